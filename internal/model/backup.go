package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupSetting is a singleton row (ID 1) controlling period-close email
// delivery: whether reports are mailed at all and the primary admin address.
type BackupSetting struct {
	ID            uint            `gorm:"primary_key" json:"id"`
	IsEmailActive bool            `gorm:"default:false" json:"is_email_active"`
	AdminEmail    string          `gorm:"type:varchar(255);not null" json:"admin_email"`
	Emails        []VerifiedEmail `gorm:"foreignKey:SettingsID" json:"emails,omitempty"`
}

// VerifiedEmail is an extra backup recipient. It becomes deliverable only
// after the OTP it was mailed is verified; the code expires after 5 minutes
// and is cleared on success.
type VerifiedEmail struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	IsVerified bool       `gorm:"default:false" json:"is_verified"`
	OTPCode    *string    `gorm:"type:varchar(6)" json:"-"`
	OTPExpiry  *time.Time `json:"-"`
	SettingsID uint       `gorm:"index" json:"settings_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (v *VerifiedEmail) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
