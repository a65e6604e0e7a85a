package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-server/internal/middleware"
	"hospital-server/internal/models"
	"hospital-server/internal/utils"
)

// ReportHandler serves schedule listings.
type ReportHandler struct {
	DB *gorm.DB
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db}
}

// DoctorSchedule lists a doctor's appointments for one calendar day.
// Accessible by that doctor or an admin.
func (h *ReportHandler) DoctorSchedule(c *gin.Context) {
	doctorID := c.Query("doctor_id")
	dateStr := c.Query("date")
	if doctorID == "" || dateStr == "" {
		utils.BadRequest(c, "doctor_id and date are required")
		return
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.BadRequest(c, "Invalid date format; use YYYY-MM-DD")
		return
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	switch role {
	case models.RoleAdmin:
	case models.RoleDoctor:
		userID, _ := middleware.GetUserIDFromContext(c)
		doctor, derr := doctorForUser(h.DB, userID)
		if derr != nil {
			if errors.Is(derr, gorm.ErrRecordNotFound) {
				utils.Forbidden(c, "No doctor profile for this account")
			} else {
				utils.InternalServerError(c, "Database error: "+derr.Error())
			}
			return
		}
		if doctor.ID != doctorID {
			utils.Forbidden(c, "Doctors may only view their own schedule")
			return
		}
	default:
		utils.Forbidden(c, "You are not authorized to view schedules")
		return
	}

	start := day
	end := day.AddDate(0, 0, 1)

	var appointments []models.Appointment
	if err := h.DB.
		Where("doctor_id = ? AND scheduled_time >= ? AND scheduled_time < ?", doctorID, start, end).
		Order("scheduled_time asc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch schedule: "+err.Error())
		return
	}

	utils.Success(c, "Schedule fetched successfully", appointments)
}
