// models/user_profile.go
package models

import (
	"github.com/shopspring/decimal"
)

// UserProfile is the local accounting view of a user: point balance, task
// creation quota and completion counters. Identity lives with the identity provider.
type UserProfile struct {
	UserID              string          `gorm:"primaryKey" json:"user_id"`
	Balance             decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0" json:"balance"`
	AvailableTasks      int             `gorm:"not null;default:0" json:"available_tasks"`
	CompletedTasksCount int             `gorm:"not null;default:0" json:"completed_tasks_count"`
	BonusTasksCompleted int             `gorm:"not null;default:0" json:"bonus_tasks_completed"`
	IsActive            bool            `gorm:"not null;index" json:"is_active"` // eligible for auto-drafting

	Timestamps
}

func (UserProfile) TableName() string { return "user_profiles" }
