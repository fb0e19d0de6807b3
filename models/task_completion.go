// models/task_completion.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TaskCompletion is one user's fulfilment of one action on one task.
// Append-only; (task_id, user_id, action_kind) is unique.
type TaskCompletion struct {
	ID          string            `gorm:"primaryKey;type:uuid" json:"id"`
	TaskID      string            `gorm:"type:uuid;not null;uniqueIndex:idx_completion_task_user_action" json:"task_id"`
	UserID      string            `gorm:"not null;uniqueIndex:idx_completion_task_user_action;index" json:"user_id"`
	ActionKind  ActionKind        `gorm:"type:varchar(32);not null;uniqueIndex:idx_completion_task_user_action" json:"action_kind"`
	CompletedAt time.Time         `gorm:"not null" json:"completed_at"`
	PostURL     string            `gorm:"type:text" json:"post_url"`
	IsAuto      bool              `gorm:"not null;default:false" json:"is_auto"`
	Counter     CompletionCounter `gorm:"type:varchar(8);not null" json:"counter"`
	Reward      decimal.Decimal   `gorm:"type:numeric(24,8);not null" json:"reward"`
	Metadata    datatypes.JSON    `json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (TaskCompletion) TableName() string { return "task_completions" }
