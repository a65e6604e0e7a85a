package models

// Hospital is a facility appointments can be booked against.
type Hospital struct {
	BaseModel
	Name    string  `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Address *string `gorm:"size:255" json:"address,omitempty"`
}

// DoctorHospitalAssignment links a doctor to a hospital they practice at.
type DoctorHospitalAssignment struct {
	BaseModel
	DoctorID   string `gorm:"size:36;index;not null" json:"doctorId"`
	HospitalID string `gorm:"size:36;index;not null" json:"hospitalId"`
}
