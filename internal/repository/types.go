package repository

import "time"

// MemberListFilter filters the admin member listing.
type MemberListFilter struct {
	Page           int
	PageSize       int
	Keyword        string
	Role           string
	ReferralStatus string
	MinRoleLevel   int
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

// OrphanListFilter filters users waiting for a referrer assignment.
type OrphanListFilter struct {
	Page     int
	PageSize int
	Reason   string
}

// RoleChangeListFilter filters the promotion history listing.
type RoleChangeListFilter struct {
	Page     int
	PageSize int
	UserID   uint
}
