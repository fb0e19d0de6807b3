package models

import "time"

// TaskReport is a user's complaint about a task, e.g. a dead link.
type TaskReport struct {
	ID        string       `gorm:"primaryKey;type:uuid" json:"id"`
	TaskID    string       `gorm:"type:uuid;not null;uniqueIndex:idx_report_task_user" json:"task_id"`
	UserID    string       `gorm:"not null;uniqueIndex:idx_report_task_user" json:"user_id"`
	Reason    ReportReason `gorm:"type:varchar(32);not null" json:"reason"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (TaskReport) TableName() string { return "task_reports" }
