// models/notification.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type NotificationKind string

const (
	NotificationTaskCompleted NotificationKind = "TASK_COMPLETED"
	NotificationTaskDeleted   NotificationKind = "TASK_DELETED"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationDLQ     NotificationStatus = "DLQ"
)

// Notification is an outbox row: a message intent for the creator of a task,
// delivered by the dispatcher with retries.
type Notification struct {
	ID              string             `gorm:"primaryKey;type:uuid" json:"id"`
	IdempotencyKey  string             `gorm:"type:varchar(128);uniqueIndex;not null" json:"idempotency_key"`
	Kind            NotificationKind   `gorm:"type:varchar(32);not null" json:"kind"`
	TaskID          string             `gorm:"type:uuid;index;not null" json:"task_id"`
	RecipientUserID string             `gorm:"not null" json:"recipient_user_id"`
	Reason          *DeletionReason    `gorm:"type:varchar(32)" json:"reason,omitempty"`
	RefundAmount    decimal.Decimal    `gorm:"type:numeric(24,8);not null;default:0" json:"refund_amount"`
	Subject         string             `gorm:"type:text;not null" json:"subject"`
	Body            string             `gorm:"type:text;not null" json:"body"`
	Payload         datatypes.JSON     `json:"payload,omitempty"`
	Status          NotificationStatus `gorm:"type:varchar(16);index;not null;default:'PENDING'" json:"status"`
	AttemptCount    int                `gorm:"not null;default:0" json:"attempt_count"`
	MaxAttempts     int                `gorm:"not null;default:3" json:"max_attempts"`
	LastError       string             `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt     time.Time          `gorm:"index;not null" json:"next_retry_at"`
	SentAt          *time.Time         `json:"sent_at,omitempty"`

	Timestamps
}

func (Notification) TableName() string { return "notifications" }
