// Package scheduling books appointments against doctor availability and
// guards both doctors and patients from double-booking.
package scheduling

import (
	"errors"
	"time"

	"hospital-server/internal/models"
)

// SlotRadius is the half-width of a booking slot: two appointments for the
// same doctor or patient must be strictly more than 29 minutes apart.
// 29, not 30 — the closed interval leaves a gap against a 30-minute cadence.
const SlotRadius = 29 * time.Minute

// Rejection reasons surfaced to callers as user-correctable errors.
var (
	ErrDoctorUnavailable   = errors.New("doctor_unavailable")
	ErrDoctorSlotConflict  = errors.New("doctor_slot_conflict")
	ErrPatientSlotConflict = errors.New("patient_slot_conflict")
	ErrInvalidStatusChange = errors.New("invalid_status_change")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("appointment not found")
)

// MatchesAvailability reports whether at falls inside any of the given
// windows. A window matches on [start, end): inclusive of the start minute,
// exclusive of the end. No windows means not available.
func MatchesAvailability(windows []models.DoctorAvailability, at time.Time) bool {
	day := int(at.Weekday())
	minute := at.Hour()*60 + at.Minute()
	for _, w := range windows {
		if w.DayOfWeek == day && minute >= w.StartMinute && minute < w.EndMinute {
			return true
		}
	}
	return false
}

// HasSlotCollision reports whether any appointment (other than excludeID)
// is scheduled within SlotRadius of at, endpoints included. Status is
// deliberately ignored: cancelled appointments still occupy their slot.
func HasSlotCollision(appointments []models.Appointment, at time.Time, excludeID string) bool {
	for _, a := range appointments {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		gap := a.ScheduledTime.Sub(at)
		if gap < 0 {
			gap = -gap
		}
		if gap <= SlotRadius {
			return true
		}
	}
	return false
}

// ValidateSlot is the pure conflict decision over a consistent snapshot of
// the doctor's windows and both parties' nearby appointments. Checks run in
// order and short-circuit on the first failure.
func ValidateSlot(windows []models.DoctorAvailability, doctorAppointments, patientAppointments []models.Appointment, at time.Time, excludeID string) error {
	if !MatchesAvailability(windows, at) {
		return ErrDoctorUnavailable
	}
	if HasSlotCollision(doctorAppointments, at, excludeID) {
		return ErrDoctorSlotConflict
	}
	if HasSlotCollision(patientAppointments, at, excludeID) {
		return ErrPatientSlotConflict
	}
	return nil
}
