package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-server/internal/middleware"
	"hospital-server/internal/models"
	"hospital-server/internal/scheduling"
	"hospital-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB        *gorm.DB
	Scheduler *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, scheduler *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Scheduler: scheduler}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	DoctorID      string    `json:"doctorId" binding:"required,uuid"`
	HospitalID    *string   `json:"hospitalId"`
	ScheduledTime time.Time `json:"scheduledTime" binding:"required"`
}

// CreateAppointment books an appointment for the calling patient. The slot
// is validated against availability and both parties' existing bookings.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	patient, err := patientForUser(h.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Forbidden(c, "No patient profile for this account")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", req.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	appt, err := h.Scheduler.Book(patient.ID, doctor.ID, req.HospitalID, req.ScheduledTime)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", appt)
}

// GetAppointmentsForUser lists appointments for the logged-in user: own
// bookings for patients, own schedule for doctors, everything for admins.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Order("scheduled_time asc")
	var appointments []models.Appointment
	var err error

	switch role {
	case models.RolePatient:
		patient, perr := patientForUser(h.DB, userID)
		if perr != nil {
			utils.InternalServerError(c, "Database error: "+perr.Error())
			return
		}
		err = query.Where("patient_id = ?", patient.ID).Find(&appointments).Error
	case models.RoleDoctor:
		doctor, derr := doctorForUser(h.DB, userID)
		if derr != nil {
			utils.InternalServerError(c, "Database error: "+derr.Error())
			return
		}
		err = query.Where("doctor_id = ?", doctor.ID).Find(&appointments).Error
	case models.RoleAdmin:
		err = query.Find(&appointments).Error
	default:
		utils.Forbidden(c, "User role not permitted to view appointments")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID fetches one appointment. Accessible by the involved
// patient, the involved doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appt, err := h.Scheduler.Get(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	caller, ok := h.resolveCaller(c)
	if !ok {
		return
	}
	if caller.Role != models.RoleAdmin &&
		appt.PatientID != caller.ProfileID && appt.DoctorID != caller.ProfileID {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appt)
}

// UpdateAppointmentRequest represents the request body for updating an
// appointment. All fields are optional; time changes re-run slot
// validation with the appointment itself excluded.
type UpdateAppointmentRequest struct {
	ScheduledTime *time.Time                `json:"scheduledTime"`
	Status        *models.AppointmentStatus `json:"status"`
	Notes         *string                   `json:"notes"`
}

// UpdateAppointment applies time/status/notes changes under the lifecycle
// rules: patients may only cancel their own, doctors drive their own
// appointments, admins anything.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.Status != nil {
		switch *req.Status {
		case models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusCancelled:
		default:
			utils.BadRequest(c, "Unknown appointment status")
			return
		}
	}

	caller, ok := h.resolveCaller(c)
	if !ok {
		return
	}

	appt, err := h.Scheduler.Update(c.Param("id"), scheduling.UpdateInput{
		NewTime:   req.ScheduledTime,
		NewStatus: req.Status,
		NewNotes:  req.Notes,
	}, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment updated successfully", appt)
}

// DoctorNoteRequest carries a note the owning doctor attaches to an
// appointment.
type DoctorNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// UpdateDoctorNote lets the owning doctor set the appointment notes without
// touching time or status.
func (h *AppointmentHandler) UpdateDoctorNote(c *gin.Context) {
	var req DoctorNoteRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	caller, ok := h.resolveCaller(c)
	if !ok {
		return
	}
	if caller.Role != models.RoleDoctor {
		utils.Forbidden(c, "Only the owning doctor can attach notes")
		return
	}

	appt, err := h.Scheduler.Update(c.Param("id"), scheduling.UpdateInput{NewNotes: &req.Note}, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Note updated successfully", appt)
}

// ReassignAppointmentRequest is the admin-only reassignment body.
type ReassignAppointmentRequest struct {
	NewDoctorID   string  `json:"newDoctorId" binding:"required,uuid"`
	NewHospitalID *string `json:"newHospitalId"`
}

// ReassignAppointment rewrites doctor/hospital on an appointment without
// conflict re-validation. Routes gate this to admins.
func (h *AppointmentHandler) ReassignAppointment(c *gin.Context) {
	var req ReassignAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Scheduler.Reassign(c.Param("id"), req.NewDoctorID, req.NewHospitalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment reassigned successfully", appt)
}

// resolveCaller builds the scheduling caller identity from the request
// context, resolving the role's profile id.
func (h *AppointmentHandler) resolveCaller(c *gin.Context) (scheduling.Caller, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return scheduling.Caller{}, false
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	caller := scheduling.Caller{Role: role}
	switch role {
	case models.RolePatient:
		patient, err := patientForUser(h.DB, userID)
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return scheduling.Caller{}, false
		}
		caller.ProfileID = patient.ID
	case models.RoleDoctor:
		doctor, err := doctorForUser(h.DB, userID)
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return scheduling.Caller{}, false
		}
		caller.ProfileID = doctor.ID
	}
	return caller, true
}
