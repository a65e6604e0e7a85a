package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-server/internal/models"
	"hospital-server/internal/scheduling"
	"hospital-server/internal/token"
	"hospital-server/internal/utils"
)

// respondServiceError maps core errors onto the response envelope.
// Validation rejections are user-correctable 400s carrying the reason;
// authentication failures stay uniformly opaque.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrNotFound):
		utils.NotFound(c, "Appointment not found")
	case errors.Is(err, scheduling.ErrForbidden):
		utils.Forbidden(c, "You are not authorized to modify this appointment")
	case errors.Is(err, scheduling.ErrDoctorUnavailable),
		errors.Is(err, scheduling.ErrDoctorSlotConflict),
		errors.Is(err, scheduling.ErrPatientSlotConflict),
		errors.Is(err, scheduling.ErrInvalidStatusChange):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, token.ErrUnauthenticated):
		utils.Unauthorized(c, "unauthenticated")
	default:
		utils.InternalServerError(c, "Internal error: "+err.Error())
	}
}

// patientForUser resolves the patient profile belonging to a user account.
func patientForUser(db *gorm.DB, userID string) (*models.Patient, error) {
	var patient models.Patient
	if err := db.First(&patient, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// doctorForUser resolves the doctor profile belonging to a user account.
func doctorForUser(db *gorm.DB, userID string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := db.First(&doctor, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}
