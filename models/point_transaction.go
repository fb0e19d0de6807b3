// models/point_transaction.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TxTaskCreationDebit TransactionKind = "TASK_CREATION_DEBIT"
	TxCompletionReward  TransactionKind = "COMPLETION_REWARD"
	TxDeletionRefund    TransactionKind = "DELETION_REFUND"
	TxPaymentCredit     TransactionKind = "PAYMENT_CREDIT"
)

// PointTransaction is an append-only ledger row written next to every balance change.
type PointTransaction struct {
	ID           string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string          `gorm:"index;not null" json:"user_id"`
	TaskID       *string         `gorm:"type:uuid;index" json:"task_id,omitempty"`
	Kind         TransactionKind `gorm:"type:varchar(32);not null" json:"kind"`
	Amount       decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"amount"` // signed
	BalanceAfter decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"balance_after"`
	Reference    string          `gorm:"type:varchar(128)" json:"reference,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (PointTransaction) TableName() string { return "point_transactions" }
