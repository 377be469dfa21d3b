package models

import "time"

// ReferralCode is a reserved code row. Reservation is a create-if-absent
// insert against the unique code column; a reserved code is never reassigned.
type ReferralCode struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Code       string    `gorm:"uniqueIndex;not null" json:"code"`
	UserID     uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	ReservedAt time.Time `gorm:"not null" json:"reserved_at"`
}

// TableName sets the table name.
func (ReferralCode) TableName() string {
	return "referral_codes"
}
