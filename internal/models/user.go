package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a movement member. Referral fields follow the document-store
// heritage of the mobile app: the ancestry chain is an immutable snapshot
// copied at attachment time, and the two counters only ever grow.
type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Phone        string `gorm:"uniqueIndex;not null" json:"phone"`
	Email        string `gorm:"default:''" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `gorm:"default:''" json:"full_name"`
	Status       string `gorm:"default:'active';index" json:"status"`
	TokenVersion uint64 `gorm:"not null;default:0" json:"-"`

	// Referral network state.
	ReferralCode        *string `gorm:"uniqueIndex" json:"referral_code"` // nil until issued
	ReferredBy          string  `gorm:"default:'';index" json:"referred_by"`
	ReferralChain       IDList  `gorm:"type:text" json:"referral_chain"`
	ReferralStatus      string  `gorm:"default:'pending_payment';index" json:"referral_status"`
	DirectReferralCount int64   `gorm:"not null;default:0" json:"direct_referral_count"`
	TotalTeamSize       int64   `gorm:"not null;default:0" json:"total_team_size"`
	CurrentRole         string  `gorm:"default:'member'" json:"current_role"`
	// RoleLevel is denormalized from CurrentRole so leader queries and the
	// no-demotion guard stay single-column comparisons.
	RoleLevel  int        `gorm:"not null;default:1;index" json:"role_level"`
	PromotedAt *time.Time `json:"promoted_at"`

	// Optional location, used only by orphan assignment.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	IsUrban   bool     `gorm:"default:false" json:"is_urban"`

	ActivatedAt *time.Time     `json:"activated_at"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}

// HasLocation reports whether the user carries usable coordinates.
func (u *User) HasLocation() bool {
	return u != nil && u.Latitude != nil && u.Longitude != nil
}

// IsActiveMember reports whether the account participates in the network.
func (u *User) IsActiveMember() bool {
	return u != nil && u.Status == "active"
}
