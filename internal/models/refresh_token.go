package models

import (
	"time"
)

// RefreshToken is the server-side record backing one issued refresh token.
// The JTI embedded in the signed token correlates 1:1 with this row, which
// is the authority for revocation: a cryptographically valid token whose
// row is missing, revoked or past expiry is rejected. Revoked flips
// false -> true exactly once and never back.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	JTI       string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	Revoked   bool      `gorm:"default:false;index" json:"revoked"`
}
