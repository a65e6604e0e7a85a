package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-server/internal/models"
	"hospital-server/internal/utils"
)

// AdminHandler covers hospital and doctor administration.
type AdminHandler struct {
	DB *gorm.DB
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// CreateHospitalRequest represents the request body for creating a hospital.
type CreateHospitalRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
}

// CreateHospital registers a new hospital.
func (h *AdminHandler) CreateHospital(c *gin.Context) {
	var req CreateHospitalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hospital := models.Hospital{Name: req.Name, Address: req.Address}
	if err := h.DB.Create(&hospital).Error; err != nil {
		utils.InternalServerError(c, "Failed to create hospital: "+err.Error())
		return
	}
	utils.Created(c, "Hospital created successfully", hospital)
}

// ListHospitals returns all hospitals.
func (h *AdminHandler) ListHospitals(c *gin.Context) {
	var hospitals []models.Hospital
	if err := h.DB.Find(&hospitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch hospitals: "+err.Error())
		return
	}
	utils.Success(c, "Hospitals fetched successfully", hospitals)
}

// DoctorResponse joins the doctor profile with its account data.
type DoctorResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"userId"`
	FullName       string  `json:"fullName"`
	Email          string  `json:"email"`
	Specialization *string `json:"specialization,omitempty"`
}

// ListDoctors returns all doctors with their account names resolved.
func (h *AdminHandler) ListDoctors(c *gin.Context) {
	var doctors []models.Doctor
	if err := h.DB.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	result := make([]DoctorResponse, 0, len(doctors))
	for _, d := range doctors {
		entry := DoctorResponse{ID: d.ID, UserID: d.UserID, Specialization: d.Specialization}
		var user models.User
		if err := h.DB.First(&user, "id = ?", d.UserID).Error; err == nil {
			entry.FullName = user.FullName
			entry.Email = user.Email
		}
		result = append(result, entry)
	}
	utils.Success(c, "Doctors fetched successfully", result)
}

// AddAvailabilityRequest represents one weekly availability window.
// Minutes count from midnight; dayOfWeek follows time.Weekday (Sunday = 0).
type AddAvailabilityRequest struct {
	DayOfWeek   int `json:"dayOfWeek" binding:"min=0,max=6"`
	StartMinute int `json:"startMinute" binding:"min=0,max=1439"`
	EndMinute   int `json:"endMinute" binding:"min=1,max=1440"`
}

// AddAvailability creates a weekly availability window for a doctor.
// Overlap with existing windows is not checked; windows OR together.
func (h *AdminHandler) AddAvailability(c *gin.Context) {
	var req AddAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.StartMinute >= req.EndMinute {
		utils.BadRequest(c, "startMinute must be before endMinute")
		return
	}

	doctorID := c.Param("doctorId")
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	window := models.DoctorAvailability{
		DoctorID:    doctor.ID,
		DayOfWeek:   req.DayOfWeek,
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
	}
	if err := h.DB.Create(&window).Error; err != nil {
		utils.InternalServerError(c, "Failed to create availability: "+err.Error())
		return
	}
	utils.Created(c, "Availability created successfully", window)
}

// ListAvailability lists a doctor's weekly windows.
func (h *AdminHandler) ListAvailability(c *gin.Context) {
	var windows []models.DoctorAvailability
	if err := h.DB.Where("doctor_id = ?", c.Param("doctorId")).Find(&windows).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch availability: "+err.Error())
		return
	}
	utils.Success(c, "Availability fetched successfully", windows)
}

// SetSpecializationRequest updates a doctor's specialization.
type SetSpecializationRequest struct {
	Specialization string `json:"specialization" binding:"required"`
}

// SetSpecialization updates the doctor's specialization.
func (h *AdminHandler) SetSpecialization(c *gin.Context) {
	var req SetSpecializationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("doctorId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	doctor.Specialization = &req.Specialization
	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}
	utils.Success(c, "Doctor updated successfully", doctor)
}

// AssignDoctorRequest links a doctor to a hospital.
type AssignDoctorRequest struct {
	HospitalID string `json:"hospitalId" binding:"required,uuid"`
}

// AssignDoctorToHospital records that a doctor practices at a hospital.
func (h *AdminHandler) AssignDoctorToHospital(c *gin.Context) {
	var req AssignDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	assignment := models.DoctorHospitalAssignment{
		DoctorID:   c.Param("doctorId"),
		HospitalID: req.HospitalID,
	}
	if err := h.DB.Create(&assignment).Error; err != nil {
		utils.InternalServerError(c, "Failed to assign doctor: "+err.Error())
		return
	}
	utils.Created(c, "Doctor assigned successfully", assignment)
}
