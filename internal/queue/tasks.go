package queue

import (
	"encoding/json"

	"github.com/talowa-app/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskRolePromotionNotify records a promotion notification.
	TaskRolePromotionNotify = constants.TaskRolePromotionNotify
	// TaskOrphanAssignedNotify records an orphan assignment notification.
	TaskOrphanAssignedNotify = constants.TaskOrphanAssignedNotify
	// TaskOrphanSweep resolves every pending orphan.
	TaskOrphanSweep = constants.TaskOrphanSweep
)

// RolePromotionPayload carries a promotion event.
type RolePromotionPayload struct {
	UserID   uint   `json:"user_id"`
	FromRole string `json:"from_role"`
	ToRole   string `json:"to_role"`
}

// OrphanAssignedPayload carries an orphan assignment event.
type OrphanAssignedPayload struct {
	LeaderID uint   `json:"leader_id"`
	OrphanID uint   `json:"orphan_id"`
	Source   string `json:"source"`
}

// OrphanSweepPayload carries sweep parameters.
type OrphanSweepPayload struct {
	BatchSize int `json:"batch_size"`
}

// NewRolePromotionTask creates a promotion notification task.
func NewRolePromotionTask(payload RolePromotionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRolePromotionNotify, body), nil
}

// NewOrphanAssignedTask creates an orphan assignment notification task.
func NewOrphanAssignedTask(payload OrphanAssignedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrphanAssignedNotify, body), nil
}

// NewOrphanSweepTask creates an orphan sweep task.
func NewOrphanSweepTask(payload OrphanSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrphanSweep, body), nil
}
