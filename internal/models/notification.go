package models

import "time"

// Notification is a recorded recognition event (promotion, orphan
// assignment). Delivery to devices happens elsewhere; the worker only
// materialises rows here.
type Notification struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Type      string     `gorm:"index;not null" json:"type"`
	Title     string     `gorm:"default:''" json:"title"`
	Body      string     `gorm:"default:''" json:"body"`
	Data      JSON       `gorm:"type:text" json:"data"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (Notification) TableName() string {
	return "notifications"
}
