package models

// Doctor is the doctor profile attached to a user account.
type Doctor struct {
	BaseModel
	UserID         string  `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization *string `gorm:"size:100" json:"specialization,omitempty"`
}
