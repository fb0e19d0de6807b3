// services/payments.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"upvote-club/models"
	"upvote-club/store"

	"github.com/shopspring/decimal"
)

// PointLedger handles balance reads and externally triggered credits.
type PointLedger struct {
	Store   store.Store
	Alerter Alerter
}

func NewPointLedger(st store.Store, alerter Alerter) *PointLedger {
	if alerter == nil {
		alerter = NopAlerter{}
	}
	return &PointLedger{Store: st, Alerter: alerter}
}

type PaymentCreditInput struct {
	PaymentID string          `json:"payment_id"`
	UserID    string          `json:"user_id"`
	Points    decimal.Decimal `json:"points"`
	Tasks     int             `json:"tasks"`
}

// CreditPayment applies a processed payment exactly once per PaymentID. A
// profile is created for first-time payers.
func (l *PointLedger) CreditPayment(ctx context.Context, in PaymentCreditInput) (*models.UserProfile, error) {
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	in.UserID = strings.TrimSpace(in.UserID)
	if in.PaymentID == "" || in.UserID == "" {
		return nil, fmt.Errorf("%w: payment_id and user_id are required", models.ErrInvalidAmount)
	}
	if in.Points.IsNegative() || in.Tasks < 0 || (in.Points.IsZero() && in.Tasks == 0) {
		return nil, models.ErrInvalidAmount
	}

	var out models.UserProfile
	err := l.Store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreatePaymentCredit(ctx, &models.PaymentCredit{
			PaymentID: in.PaymentID,
			UserID:    in.UserID,
			Points:    in.Points,
			Tasks:     in.Tasks,
		}); err != nil {
			return err
		}

		profile, err := tx.LockProfile(ctx, in.UserID)
		if errors.Is(err, models.ErrProfileNotFound) {
			profile = &models.UserProfile{UserID: in.UserID, Balance: decimal.Zero, IsActive: true}
			err = tx.CreateProfile(ctx, profile)
		}
		if err != nil {
			return err
		}

		profile.AvailableTasks += in.Tasks
		if in.Points.IsPositive() {
			if err := credit(ctx, tx, profile, in.Points, models.TxPaymentCredit, "", in.PaymentID); err != nil {
				return err
			}
		} else if err := tx.SaveProfile(ctx, profile); err != nil {
			return err
		}
		out = *profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[LEDGER] 💳 Payment %s credited %s pts and %d tasks to %s", in.PaymentID, in.Points, in.Tasks, in.UserID)
	l.Alerter.Alert(AlertPayment, fmt.Sprintf("💳 Payment %s\nUser: %s\nPoints: %s\nTasks: %d\nBalance: %s",
		in.PaymentID, in.UserID, in.Points, in.Tasks, out.Balance))
	return &out, nil
}

func (l *PointLedger) GetBalance(ctx context.Context, userID string) (*models.UserProfile, error) {
	return l.Store.GetProfile(ctx, userID)
}

// History lists a user's ledger entries, oldest first, newer than after.
func (l *PointLedger) History(ctx context.Context, userID string, after time.Time, limit int) ([]models.PointTransaction, error) {
	return l.Store.ListTransactions(ctx, store.TransactionFilter{UserID: userID, After: after, Limit: limit})
}
