package models

import "time"

// MembershipPayment records one membership fee confirmation delivered by the
// payment provider webhook. TxnID is unique so duplicate webhook deliveries
// collapse into a single row.
type MembershipPayment struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Provider  string     `gorm:"default:''" json:"provider"`
	TxnID     string     `gorm:"uniqueIndex;not null" json:"txn_id"`
	Amount    Money      `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency  string     `gorm:"default:'INR'" json:"currency"`
	Status    string     `gorm:"default:'pending';index" json:"status"`
	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (MembershipPayment) TableName() string {
	return "membership_payments"
}
