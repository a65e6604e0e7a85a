package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a scheduled medical appointment. Relations are
// resolved by id lookup; the struct carries foreign keys only.
type Appointment struct {
	BaseModel
	PatientID     string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID      string            `gorm:"size:36;index;not null" json:"doctorId"`
	HospitalID    *string           `gorm:"size:36" json:"hospitalId,omitempty"`
	ScheduledTime time.Time         `gorm:"index;not null" json:"scheduledTime"`
	Status        AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	Notes         *string           `gorm:"type:text" json:"notes,omitempty"`
}
