// models/task.go
package models

import (
	"time"
)

// Task is a unit of requested social engagement, paid for up front by its creator.
type Task struct {
	ID               string        `gorm:"primaryKey;type:uuid" json:"id"`
	CreatorID        string        `gorm:"index;not null" json:"creator_id"`
	SocialNetwork    SocialNetwork `gorm:"type:varchar(32);index;not null" json:"social_network"`
	ActionKind       ActionKind    `gorm:"type:varchar(32);not null" json:"action_kind"`
	PostURL          string        `gorm:"type:text;not null" json:"post_url"`
	TargetIdentifier *string       `gorm:"type:varchar(128)" json:"target_identifier,omitempty"` // resolved FOLLOW target

	// 💰 Economics
	Price         int64 `gorm:"not null" json:"price"`          // points per main action
	OriginalPrice int64 `gorm:"not null" json:"original_price"` // price × actions_required at creation, never recalculated

	// 🔢 Counters
	ActionsRequired       int `gorm:"not null" json:"actions_required"`
	ActionsCompleted      int `gorm:"not null;default:0" json:"actions_completed"`
	BonusActions          int `gorm:"not null;default:0" json:"bonus_actions"`
	BonusActionsCompleted int `gorm:"not null;default:0" json:"bonus_actions_completed"`

	// 🎛️ Lifecycle
	Status             TaskStatus      `gorm:"type:varchar(16);index;not null;default:'ACTIVE'" json:"status"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CompletionDuration *time.Duration  `json:"completion_duration,omitempty"`
	DeletionReason     *DeletionReason `gorm:"type:varchar(32)" json:"deletion_reason,omitempty"`
	DeletedAt          *time.Time      `json:"deleted_at,omitempty"`

	// Set once the "task completed" notice has been delivered.
	CompletionEmailSent bool `gorm:"not null;default:false" json:"completion_email_sent"`

	Timestamps
}

func (Task) TableName() string { return "tasks" }

func (t *Task) MainRemaining() int {
	if r := t.ActionsRequired - t.ActionsCompleted; r > 0 {
		return r
	}
	return 0
}

func (t *Task) BonusRemaining() int {
	if r := t.BonusActions - t.BonusActionsCompleted; r > 0 {
		return r
	}
	return 0
}

// MeetsCompletionCriterion is true once both counters reached their targets
// on a task that required at least one action.
func (t *Task) MeetsCompletionCriterion() bool {
	return t.ActionsRequired > 0 &&
		t.ActionsCompleted >= t.ActionsRequired &&
		t.BonusActionsCompleted >= t.BonusActions
}

// MarkCompleted records the ACTIVE -> COMPLETED transition. completed_at and
// completion_duration are only ever written here.
func (t *Task) MarkCompleted(now time.Time) {
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	d := now.Sub(t.CreatedAt)
	t.CompletionDuration = &d
}

// MarkDeleted records the terminal DELETED transition.
func (t *Task) MarkDeleted(reason DeletionReason, now time.Time) {
	t.Status = TaskStatusDeleted
	t.DeletionReason = &reason
	t.DeletedAt = &now
}
