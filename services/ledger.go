// services/ledger.go
package services

import (
	"context"
	"fmt"

	"upvote-club/models"
	"upvote-club/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// applyBalance moves a locked profile's balance by amount (signed) and appends
// the matching ledger row. Both writes belong to the caller's transaction.
func applyBalance(ctx context.Context, tx store.Store, profile *models.UserProfile, amount decimal.Decimal, kind models.TransactionKind, taskID, reference string) error {
	profile.Balance = profile.Balance.Add(amount)
	if err := tx.SaveProfile(ctx, profile); err != nil {
		return err
	}

	entry := &models.PointTransaction{
		ID:           uuid.NewString(),
		UserID:       profile.UserID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: profile.Balance,
		Reference:    reference,
	}
	if taskID != "" {
		entry.TaskID = &taskID
	}
	if err := tx.AddTransaction(ctx, entry); err != nil {
		return fmt.Errorf("ledger %s for %s: %w", kind, profile.UserID, err)
	}
	return nil
}

func credit(ctx context.Context, tx store.Store, profile *models.UserProfile, amount decimal.Decimal, kind models.TransactionKind, taskID, reference string) error {
	if amount.IsNegative() {
		return models.ErrInvalidAmount
	}
	return applyBalance(ctx, tx, profile, amount, kind, taskID, reference)
}

func debit(ctx context.Context, tx store.Store, profile *models.UserProfile, amount decimal.Decimal, kind models.TransactionKind, taskID, reference string) error {
	if amount.IsNegative() {
		return models.ErrInvalidAmount
	}
	if profile.Balance.LessThan(amount) {
		return models.ErrInsufficientBalance
	}
	return applyBalance(ctx, tx, profile, amount.Neg(), kind, taskID, reference)
}
