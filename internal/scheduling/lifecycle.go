package scheduling

import (
	"hospital-server/internal/models"
)

// Caller identifies who is driving an appointment mutation. ProfileID is
// the patient or doctor profile id for those roles; admins carry none.
type Caller struct {
	Role      models.Role
	ProfileID string
}

// allowedTransitions is the appointment state machine. rejected and
// cancelled are terminal.
var allowedTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:  {models.StatusApproved, models.StatusRejected, models.StatusCancelled},
	models.StatusApproved: {models.StatusCancelled},
}

func transitionAllowed(from, to models.AppointmentStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckStatusChange validates a status transition for the given caller.
// Patients may only cancel; doctors and admins may drive any transition the
// state machine permits. Ownership is checked separately.
func CheckStatusChange(from, to models.AppointmentStatus, role models.Role) error {
	if role == models.RolePatient && to != models.StatusCancelled {
		return ErrInvalidStatusChange
	}
	if !transitionAllowed(from, to) {
		return ErrInvalidStatusChange
	}
	return nil
}

// checkOwnership rejects callers who are neither the admin nor a party on
// the appointment record.
func checkOwnership(appt *models.Appointment, caller Caller) error {
	switch caller.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleDoctor:
		if appt.DoctorID != caller.ProfileID {
			return ErrForbidden
		}
		return nil
	case models.RolePatient:
		if appt.PatientID != caller.ProfileID {
			return ErrForbidden
		}
		return nil
	}
	return ErrForbidden
}
