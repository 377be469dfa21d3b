package models

import "time"

// Referral is the relationship record between a referrer and a referee.
// At most one exists per referee; it is created at attachment time and
// only its status moves, pending to completed, on membership activation.
type Referral struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	ReferrerID uint   `gorm:"index;not null" json:"referrer_id"`
	RefereeID  uint   `gorm:"uniqueIndex;not null" json:"referee_id"`
	Code       string `gorm:"index;default:''" json:"code"`
	Status     string `gorm:"default:'pending';index" json:"status"`

	// Assignment metadata. Source is "code" for normal attachment,
	// "auto"/"admin" for orphan resolution.
	Source             string   `gorm:"default:'code'" json:"source"`
	AssignmentReason   string   `gorm:"default:''" json:"assignment_reason,omitempty"`
	AssignmentDistance *float64 `json:"assignment_distance_km,omitempty"`

	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Referrer *User `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	Referee  *User `gorm:"foreignKey:RefereeID" json:"referee,omitempty"`
}

// TableName sets the table name.
func (Referral) TableName() string {
	return "referrals"
}
