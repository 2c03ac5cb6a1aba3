package models

import "time"

// OTPCode is a one-time registration code. Only the hash is stored.
type OTPCode struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Email      string     `gorm:"index;size:255;not null" json:"email"`
	CodeHash   string     `gorm:"size:64;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	Attempts   int        `gorm:"default:0" json:"attempts"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (OTPCode) TableName() string { return "otp_codes" }
