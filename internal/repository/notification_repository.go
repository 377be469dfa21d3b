package repository

import (
	"time"

	"github.com/talowa-app/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository is the notification data access interface.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListByUser(userID uint, page, pageSize int) ([]models.Notification, int64, error)
	MarkRead(userID uint, ids []uint, at time.Time) error
}

// GormNotificationRepository is the GORM implementation.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create appends a notification.
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// ListByUser lists a member's notifications, newest first.
func (r *GormNotificationRepository) ListByUser(userID uint, page, pageSize int) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)

	var notifications []models.Notification
	if err := query.Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead marks the given notifications as read for a member.
func (r *GormNotificationRepository) MarkRead(userID uint, ids []uint, at time.Time) error {
	if userID == 0 || len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND id IN ? AND read_at IS NULL", userID, ids).
		Update("read_at", at).Error
}
