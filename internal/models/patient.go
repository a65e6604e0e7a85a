package models

// Patient is the patient profile attached to a user account.
//
// ContactNumber, Address and EmergencyContact hold sealed ciphertext, never
// plaintext. They are decrypted only at the moment of presenting the profile
// to its owner.
type Patient struct {
	BaseModel
	UserID           string  `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DateOfBirth      *string `gorm:"size:20" json:"dateOfBirth,omitempty"`
	ContactNumber    *string `gorm:"size:255" json:"-"`
	Address          *string `gorm:"size:255" json:"-"`
	EmergencyContact *string `gorm:"size:255" json:"-"`
}
