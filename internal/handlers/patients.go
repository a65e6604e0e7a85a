package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-server/internal/encryption"
	"hospital-server/internal/middleware"
	"hospital-server/internal/models"
	"hospital-server/internal/utils"
)

// PatientHandler manages patient profiles. Contact fields are sealed before
// they reach the database and opened only for the owning patient.
type PatientHandler struct {
	DB     *gorm.DB
	Cipher *encryption.Cipher
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, cipher *encryption.Cipher) *PatientHandler {
	return &PatientHandler{DB: db, Cipher: cipher}
}

// RegisterPatientRequest is the public patient self-registration body.
type RegisterPatientRequest struct {
	FullName         string  `json:"fullName" binding:"required"`
	Email            string  `json:"email" binding:"required,email"`
	Password         string  `json:"password" binding:"required,min=8"`
	DateOfBirth      *string `json:"dateOfBirth"`
	ContactNumber    *string `json:"contactNumber"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergencyContact"`
}

// RegisterPatient creates a user account plus a patient profile with the
// PII fields encrypted at rest.
func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     models.RolePatient,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		patient := models.Patient{
			UserID:           user.ID,
			DateOfBirth:      req.DateOfBirth,
			ContactNumber:    h.Cipher.Seal(req.ContactNumber),
			Address:          h.Cipher.Seal(req.Address),
			EmergencyContact: h.Cipher.Seal(req.EmergencyContact),
		}
		return tx.Create(&patient).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to register patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient registered successfully", user.Sanitize())
}

// PatientProfileResponse carries the decrypted profile. A nil field means
// unset or undecryptable; the two are not distinguished.
type PatientProfileResponse struct {
	DateOfBirth      *string `json:"dateOfBirth"`
	ContactNumber    *string `json:"contactNumber"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergencyContact"`
}

// GetMe returns the calling patient's own profile with fields opened.
func (h *PatientHandler) GetMe(c *gin.Context) {
	patient, ok := h.callerPatient(c)
	if !ok {
		return
	}
	utils.Success(c, "Profile fetched successfully", h.profileResponse(patient))
}

// UpdatePatientRequest is the profile update body. Omitted fields are left
// untouched.
type UpdatePatientRequest struct {
	DateOfBirth      *string `json:"dateOfBirth"`
	ContactNumber    *string `json:"contactNumber"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergencyContact"`
}

// UpdateMe updates the calling patient's profile, sealing any PII fields.
func (h *PatientHandler) UpdateMe(c *gin.Context) {
	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, ok := h.callerPatient(c)
	if !ok {
		return
	}

	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.ContactNumber != nil {
		patient.ContactNumber = h.Cipher.Seal(req.ContactNumber)
	}
	if req.Address != nil {
		patient.Address = h.Cipher.Seal(req.Address)
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = h.Cipher.Seal(req.EmergencyContact)
	}

	if err := h.DB.Save(patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", h.profileResponse(patient))
}

func (h *PatientHandler) callerPatient(c *gin.Context) (*models.Patient, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	patient, err := patientForUser(h.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Forbidden(c, "No patient profile for this account")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return patient, true
}

func (h *PatientHandler) profileResponse(patient *models.Patient) PatientProfileResponse {
	return PatientProfileResponse{
		DateOfBirth:      patient.DateOfBirth,
		ContactNumber:    h.Cipher.Open(patient.ContactNumber),
		Address:          h.Cipher.Open(patient.Address),
		EmergencyContact: h.Cipher.Open(patient.EmergencyContact),
	}
}
