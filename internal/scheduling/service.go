package scheduling

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-server/internal/models"
)

// Service runs booking decisions inside storage transactions so that the
// check-then-insert sequence is serializable per doctor and per patient.
type Service struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewService creates a scheduling Service.
func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log.With().Str("component", "scheduling").Logger()}
}

// UpdateInput carries the optional mutations of an appointment update. Nil
// fields are left untouched.
type UpdateInput struct {
	NewTime   *time.Time
	NewStatus *models.AppointmentStatus
	NewNotes  *string
}

// Book validates the requested slot and creates a pending appointment.
// Validation and insert share one transaction; the conflict scans take row
// locks so two concurrent bookings of the same slot cannot both pass.
func (s *Service) Book(patientID, doctorID string, hospitalID *string, at time.Time) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.validateSlot(tx, doctorID, patientID, at, ""); err != nil {
			return err
		}
		appt = models.Appointment{
			PatientID:     patientID,
			DoctorID:      doctorID,
			HospitalID:    hospitalID,
			ScheduledTime: at,
			Status:        models.StatusPending,
		}
		return tx.Create(&appt).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("appointment", appt.ID).Str("doctor", doctorID).Time("at", at).Msg("appointment booked")
	return &appt, nil
}

// Update applies a time, status and/or notes change on behalf of caller.
// A failed conflict or transition check rolls the whole update back and the
// record is left unmodified.
func (s *Service) Update(appointmentID string, in UpdateInput, caller Caller) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.fetchForUpdate(tx, appointmentID, &appt); err != nil {
			return err
		}
		if err := checkOwnership(&appt, caller); err != nil {
			return err
		}
		if in.NewTime != nil {
			if err := s.validateSlot(tx, appt.DoctorID, appt.PatientID, *in.NewTime, appt.ID); err != nil {
				return err
			}
			appt.ScheduledTime = *in.NewTime
		}
		if in.NewStatus != nil {
			if err := CheckStatusChange(appt.Status, *in.NewStatus, caller.Role); err != nil {
				return err
			}
			appt.Status = *in.NewStatus
		}
		if in.NewNotes != nil {
			appt.Notes = in.NewNotes
		}
		return tx.Save(&appt).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Reassign rewrites the doctor (and optionally hospital) on an appointment
// without re-running conflict validation. This is an administrative
// correction and an intentional bypass; route gating restricts it to admins.
func (s *Service) Reassign(appointmentID, newDoctorID string, newHospitalID *string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.fetchForUpdate(tx, appointmentID, &appt); err != nil {
			return err
		}
		appt.DoctorID = newDoctorID
		if newHospitalID != nil {
			appt.HospitalID = newHospitalID
		}
		return tx.Save(&appt).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("appointment", appt.ID).Str("doctor", newDoctorID).Msg("appointment reassigned")
	return &appt, nil
}

// Get loads an appointment without taking locks.
func (s *Service) Get(appointmentID string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.First(&appt, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *Service) fetchForUpdate(tx *gorm.DB, id string, dst *models.Appointment) error {
	if err := s.locked(tx).First(dst, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// validateSlot gathers the availability windows and both parties' nearby
// appointments inside tx and applies the pure decision. The appointment
// scans lock the matched rows so a concurrent booking for the same doctor
// or patient serializes behind this transaction.
func (s *Service) validateSlot(tx *gorm.DB, doctorID, patientID string, at time.Time, excludeID string) error {
	var windows []models.DoctorAvailability
	if err := tx.Where("doctor_id = ? AND day_of_week = ?", doctorID, int(at.Weekday())).
		Find(&windows).Error; err != nil {
		return err
	}

	from := at.Add(-SlotRadius)
	to := at.Add(SlotRadius)

	var doctorAppts []models.Appointment
	if err := s.locked(tx).
		Where("doctor_id = ? AND scheduled_time BETWEEN ? AND ?", doctorID, from, to).
		Find(&doctorAppts).Error; err != nil {
		return err
	}
	var patientAppts []models.Appointment
	if err := s.locked(tx).
		Where("patient_id = ? AND scheduled_time BETWEEN ? AND ?", patientID, from, to).
		Find(&patientAppts).Error; err != nil {
		return err
	}

	if err := ValidateSlot(windows, doctorAppts, patientAppts, at, excludeID); err != nil {
		s.log.Debug().Str("doctor", doctorID).Str("patient", patientID).Time("at", at).
			Err(err).Msg("slot rejected")
		return err
	}
	return nil
}

// locked adds SELECT ... FOR UPDATE where the dialect supports it. SQLite
// serializes writers on its own and rejects the clause.
func (s *Service) locked(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
