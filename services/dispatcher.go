// services/dispatcher.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"upvote-club/config"
	"upvote-club/models"
	"upvote-club/store"
)

// IdentityProvider resolves an opaque user id to an email address.
type IdentityProvider interface {
	ResolveEmail(ctx context.Context, userID string) (string, error)
}

// Dispatcher delivers pending outbox rows. Failures are retried with backoff
// and rows that exhaust their attempts move to the DLQ for operators.
type Dispatcher struct {
	Store     store.Store
	Identity  IdentityProvider
	Publisher Publisher
	Alerter   Alerter
	BatchSize int
	Now       func() time.Time
}

func NewDispatcher(st store.Store, identity IdentityProvider, publisher Publisher, alerter Alerter) *Dispatcher {
	if alerter == nil {
		alerter = NopAlerter{}
	}
	return &Dispatcher{
		Store:     st,
		Identity:  identity,
		Publisher: publisher,
		Alerter:   alerter,
		BatchSize: config.NotifyBatchSize,
		Now:       time.Now,
	}
}

type DispatchStats struct {
	Sent     int `json:"sent"`
	Retrying int `json:"retrying"`
	DLQ      int `json:"dlq"`
}

// DispatchDue attempts every notification whose retry time has come.
func (d *Dispatcher) DispatchDue(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats

	due, err := d.Store.ListDueNotifications(ctx, d.Now(), d.BatchSize)
	if err != nil {
		return stats, err
	}

	for i := range due {
		n := &due[i]
		status, err := d.deliver(ctx, n)
		if err != nil {
			log.Printf("[NOTIFY] ❌ Failed to persist attempt for notification %s: %v", n.ID, err)
			continue
		}
		switch status {
		case models.NotificationSent:
			stats.Sent++
		case models.NotificationDLQ:
			stats.DLQ++
		default:
			stats.Retrying++
		}
	}

	if len(due) > 0 {
		log.Printf("[NOTIFY] ✅ Dispatch pass: %d sent, %d retrying, %d moved to DLQ", stats.Sent, stats.Retrying, stats.DLQ)
	}
	return stats, nil
}

func (d *Dispatcher) deliver(ctx context.Context, n *models.Notification) (models.NotificationStatus, error) {
	now := d.Now()
	n.AttemptCount++

	sendErr := d.send(ctx, n)
	if sendErr == nil {
		n.Status = models.NotificationSent
		n.SentAt = &now
		n.LastError = ""
		if err := d.Store.SaveNotification(ctx, n); err != nil {
			return "", err
		}
		if n.Kind == models.NotificationTaskCompleted {
			if err := d.markCompletionSent(ctx, n.TaskID); err != nil {
				log.Printf("[NOTIFY] ⚠️ Sent notice for task %s but could not set its flag: %v", n.TaskID, err)
			}
		}
		log.Printf("[NOTIFY] ✅ Delivered %s to %s (attempt %d)", n.Kind, n.RecipientUserID, n.AttemptCount)
		return n.Status, nil
	}

	n.LastError = sendErr.Error()
	if n.AttemptCount >= n.MaxAttempts {
		n.Status = models.NotificationDLQ
		log.Printf("[NOTIFY] ❌ %s for task %s moved to DLQ after %d attempts: %v", n.Kind, n.TaskID, n.AttemptCount, sendErr)
		d.Alerter.Alert(AlertNotify, fmt.Sprintf("📪 Notification moved to DLQ\n\nKind: %s\nTask: %s\nRecipient: %s\nAttempts: %d\nError: %s",
			n.Kind, n.TaskID, n.RecipientUserID, n.AttemptCount, n.LastError))
	} else {
		n.NextRetryAt = now.Add(retryBackoff(n.AttemptCount))
		log.Printf("[NOTIFY] ⚠️ %s for task %s failed (attempt %d/%d), retry at %s: %v",
			n.Kind, n.TaskID, n.AttemptCount, n.MaxAttempts, n.NextRetryAt.Format(time.RFC3339), sendErr)
	}
	if err := d.Store.SaveNotification(ctx, n); err != nil {
		return "", err
	}
	return n.Status, nil
}

func (d *Dispatcher) send(ctx context.Context, n *models.Notification) error {
	msg := OutboundMessage{
		NotificationID:  n.ID,
		IdempotencyKey:  n.IdempotencyKey,
		Kind:            n.Kind,
		TaskID:          n.TaskID,
		RecipientUserID: n.RecipientUserID,
		Subject:         n.Subject,
		Body:            n.Body,
		Payload:         json.RawMessage(n.Payload),
	}
	if d.Identity != nil {
		email, err := d.Identity.ResolveEmail(ctx, n.RecipientUserID)
		if err != nil {
			return fmt.Errorf("resolve recipient: %w", err)
		}
		msg.RecipientEmail = email
	}

	pctx, cancel := context.WithTimeout(ctx, config.NotifyPublishTimeout)
	defer cancel()
	return d.Publisher.Publish(pctx, msg)
}

func (d *Dispatcher) markCompletionSent(ctx context.Context, taskID string) error {
	return d.Store.Transaction(ctx, func(tx store.Store) error {
		task, err := tx.LockTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task.CompletionEmailSent {
			return nil
		}
		task.CompletionEmailSent = true
		return tx.SaveTask(ctx, task)
	})
}

// retryBackoff: attempt 1 => 2s, attempt 2 => 5s, later attempts => 10s.
func retryBackoff(attempt int) time.Duration {
	switch attempt {
	case 1:
		return 2 * time.Second
	case 2:
		return 5 * time.Second
	default:
		return 10 * time.Second
	}
}
