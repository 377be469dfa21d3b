package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/provider"
	"github.com/talowa-app/internal/queue"
	"github.com/talowa-app/internal/repository"
	"github.com/talowa-app/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:consumer_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	notificationRepo := repository.NewNotificationRepository(db)
	container := &provider.Container{
		NotificationService: service.NewNotificationService(nil, notificationRepo),
	}
	return NewConsumer(container), db
}

func TestHandleRolePromotionRecordsNotification(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	task, err := queue.NewRolePromotionTask(queue.RolePromotionPayload{
		UserID:   7,
		FromRole: constants.RoleMember,
		ToRole:   constants.RoleVolunteer,
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleRolePromotion(context.Background(), task); err != nil {
		t.Fatalf("handle role promotion failed: %v", err)
	}

	var rows []models.Notification
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load notifications failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("notifications len want 1 got %d", len(rows))
	}
	if rows[0].UserID != 7 || rows[0].Type != constants.NotificationTypeRolePromotion {
		t.Fatalf("unexpected notification %+v", rows[0])
	}
}

func TestHandleRolePromotionSkipsEmptyPayload(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskRolePromotionNotify, []byte(`{}`))
	if err := consumer.handleRolePromotion(context.Background(), task); err != nil {
		t.Fatalf("handle empty payload failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("notifications count want 0 got %d", count)
	}
}

func TestHandleOrphanAssignedRecordsNotification(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	task, err := queue.NewOrphanAssignedTask(queue.OrphanAssignedPayload{
		LeaderID: 3,
		OrphanID: 9,
		Source:   constants.ReferralSourceAuto,
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrphanAssigned(context.Background(), task); err != nil {
		t.Fatalf("handle orphan assigned failed: %v", err)
	}

	var rows []models.Notification
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load notifications failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("notifications len want 1 got %d", len(rows))
	}
	if rows[0].UserID != 3 || rows[0].Type != constants.NotificationTypeOrphanAssigned {
		t.Fatalf("unexpected notification %+v", rows[0])
	}
}

func TestHandleTaskMalformedPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskRolePromotionNotify, []byte(`not-json`))
	if err := consumer.handleRolePromotion(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
