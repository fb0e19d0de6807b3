package models

import "time"

// Timestamps adds GORM auto-times. Tasks are never physically removed, so
// there is no gorm.DeletedAt here.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
