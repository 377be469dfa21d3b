package service

import (
	"fmt"
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/queue"
	"github.com/talowa-app/internal/repository"
)

// NotificationService records recognition events. Dispatch goes through
// the queue when it is enabled and is written inline otherwise; either
// way the caller never blocks on delivery.
type NotificationService struct {
	queueClient *queue.Client
	repo        repository.NotificationRepository
}

// NewNotificationService creates a notification service.
func NewNotificationService(queueClient *queue.Client, repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		queueClient: queueClient,
		repo:        repo,
	}
}

// NotifyRolePromotion announces a promotion. Failures are logged, never
// propagated: recognition must not roll back the promotion itself.
func (s *NotificationService) NotifyRolePromotion(userID uint, fromRole, toRole string) {
	if s == nil {
		return
	}
	payload := queue.RolePromotionPayload{UserID: userID, FromRole: fromRole, ToRole: toRole}
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueRolePromotion(payload); err != nil {
			logger.Warnw("role_promotion_enqueue_failed", "user_id", userID, "error", err)
		}
		return
	}
	if err := s.RecordRolePromotion(payload); err != nil {
		logger.Warnw("role_promotion_record_failed", "user_id", userID, "error", err)
	}
}

// NotifyOrphanAssigned announces an orphan assignment to the leader.
func (s *NotificationService) NotifyOrphanAssigned(leaderID, orphanID uint, source string) {
	if s == nil {
		return
	}
	payload := queue.OrphanAssignedPayload{LeaderID: leaderID, OrphanID: orphanID, Source: source}
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueOrphanAssigned(payload); err != nil {
			logger.Warnw("orphan_assigned_enqueue_failed", "leader_id", leaderID, "error", err)
		}
		return
	}
	if err := s.RecordOrphanAssigned(payload); err != nil {
		logger.Warnw("orphan_assigned_record_failed", "leader_id", leaderID, "error", err)
	}
}

// RecordRolePromotion materialises a promotion notification row; the
// worker calls it when consuming the queued task.
func (s *NotificationService) RecordRolePromotion(payload queue.RolePromotionPayload) error {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.Create(&models.Notification{
		UserID: payload.UserID,
		Type:   constants.NotificationTypeRolePromotion,
		Title:  "Congratulations on your promotion",
		Body:   fmt.Sprintf("You have been promoted from %s to %s.", payload.FromRole, payload.ToRole),
		Data: models.JSON{
			"from_role": payload.FromRole,
			"to_role":   payload.ToRole,
		},
		CreatedAt: time.Now(),
	})
}

// RecordOrphanAssigned materialises an orphan assignment notification row.
func (s *NotificationService) RecordOrphanAssigned(payload queue.OrphanAssignedPayload) error {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.Create(&models.Notification{
		UserID: payload.LeaderID,
		Type:   constants.NotificationTypeOrphanAssigned,
		Title:  "A new member joined your team",
		Body:   "A nearby member without a referrer was assigned to you.",
		Data: models.JSON{
			"orphan_id": payload.OrphanID,
			"source":    payload.Source,
		},
		CreatedAt: time.Now(),
	})
}

// ListByUser lists a member's notifications.
func (s *NotificationService) ListByUser(userID uint, page, pageSize int) ([]models.Notification, int64, error) {
	if s == nil || s.repo == nil {
		return []models.Notification{}, 0, nil
	}
	return s.repo.ListByUser(userID, page, pageSize)
}

// MarkRead marks a member's notifications as read.
func (s *NotificationService) MarkRead(userID uint, ids []uint) error {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.MarkRead(userID, ids, time.Now())
}
