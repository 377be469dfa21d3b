package worker

import (
	"context"
	"encoding/json"

	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/provider"
	"github.com/talowa-app/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer handles queued referral tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register mounts the task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRolePromotionNotify, c.handleRolePromotion)
	mux.HandleFunc(queue.TaskOrphanAssignedNotify, c.handleOrphanAssigned)
	mux.HandleFunc(queue.TaskOrphanSweep, c.handleOrphanSweep)
}

func (c *Consumer) handleRolePromotion(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.RolePromotionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_role_promotion_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_role_promotion_skip_invalid_payload")
		return nil
	}
	if err := c.NotificationService.RecordRolePromotion(payload); err != nil {
		logger.Warnw("worker_role_promotion_record_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleOrphanAssigned(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrphanAssignedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_orphan_assigned_unmarshal_failed", "error", err)
		return err
	}
	if payload.LeaderID == 0 {
		logger.Debugw("worker_orphan_assigned_skip_invalid_payload")
		return nil
	}
	if err := c.NotificationService.RecordOrphanAssigned(payload); err != nil {
		logger.Warnw("worker_orphan_assigned_record_failed", "leader_id", payload.LeaderID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleOrphanSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrphanSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_orphan_sweep_unmarshal_failed", "error", err)
		return err
	}
	assignments, err := c.OrphanService.ResolveAll(payload.BatchSize)
	if err != nil {
		logger.Warnw("worker_orphan_sweep_failed", "error", err)
		return err
	}
	logger.Infow("worker_orphan_sweep_done", "assigned", len(assignments))
	return nil
}
