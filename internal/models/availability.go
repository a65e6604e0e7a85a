package models

// DoctorAvailability is one weekly time window during which a doctor takes
// appointments. Times are minutes since midnight; DayOfWeek follows
// time.Weekday (Sunday = 0). A doctor may have several windows per day;
// overlapping windows are permitted and simply OR together when matched.
type DoctorAvailability struct {
	BaseModel
	DoctorID    string `gorm:"size:36;index;not null" json:"doctorId"`
	DayOfWeek   int    `gorm:"not null" json:"dayOfWeek"` // 0-6
	StartMinute int    `gorm:"not null" json:"startMinute"`
	EndMinute   int    `gorm:"not null" json:"endMinute"`
}
