package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentCredit records a processed "credit N points" event from the payment
// processor. PaymentID is the processor's id and makes crediting idempotent.
type PaymentCredit struct {
	PaymentID string          `gorm:"primaryKey;type:varchar(128)" json:"payment_id"`
	UserID    string          `gorm:"index;not null" json:"user_id"`
	Points    decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"points"`
	Tasks     int             `gorm:"not null;default:0" json:"tasks"` // task-creation quota granted
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentCredit) TableName() string { return "payment_credits" }
