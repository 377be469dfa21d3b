package models

import "time"

// RoleChange archives a promotion: the role held before, the role granted,
// and the counters that justified it. Promotions only ever move upward.
type RoleChange struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	UserID              uint      `gorm:"index;not null" json:"user_id"`
	FromRole            string    `gorm:"not null" json:"from_role"`
	ToRole              string    `gorm:"not null" json:"to_role"`
	FromLevel           int       `gorm:"not null" json:"from_level"`
	ToLevel             int       `gorm:"not null" json:"to_level"`
	DirectReferralCount int64     `gorm:"not null" json:"direct_referral_count"`
	TotalTeamSize       int64     `gorm:"not null" json:"total_team_size"`
	PromotedAt          time.Time `gorm:"index;not null" json:"promoted_at"`
}

// TableName sets the table name.
func (RoleChange) TableName() string {
	return "role_changes"
}
