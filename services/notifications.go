// services/notifications.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"upvote-club/models"
	"upvote-club/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Notifier turns lifecycle events into outbox rows. Each task gets at most one
// completion notice and one deletion notice, keyed by task id.
type Notifier struct {
	Store       store.Store
	MaxAttempts int
	Now         func() time.Time
}

func NewNotifier(st store.Store, maxAttempts int) *Notifier {
	return &Notifier{Store: st, MaxAttempts: maxAttempts, Now: time.Now}
}

func completionKey(taskID string) string { return "task_completed:" + taskID }
func deletionKey(taskID string) string   { return "task_deleted:" + taskID }

// TaskCompleted enqueues the "task completed" notice for the creator unless it
// was already delivered.
func (n *Notifier) TaskCompleted(ctx context.Context, task *models.Task) error {
	if task.CompletionEmailSent {
		return nil
	}
	subject, body := CompletionMessage(task)
	payload := map[string]any{
		"task_id":                 task.ID,
		"action_kind":             task.ActionKind,
		"social_network":          task.SocialNetwork,
		"post_url":                task.PostURL,
		"actions_required":        task.ActionsRequired,
		"actions_completed":       task.ActionsCompleted,
		"bonus_actions":           task.BonusActions,
		"bonus_actions_completed": task.BonusActionsCompleted,
		"completed_at":            task.CompletedAt,
	}
	return n.enqueue(ctx, &models.Notification{
		IdempotencyKey:  completionKey(task.ID),
		Kind:            models.NotificationTaskCompleted,
		TaskID:          task.ID,
		RecipientUserID: task.CreatorID,
		Subject:         subject,
		Body:            body,
	}, payload)
}

// TaskDeleted enqueues the deletion notice whose text depends on the reason.
func (n *Notifier) TaskDeleted(ctx context.Context, task *models.Task, reason models.DeletionReason, refund decimal.Decimal) error {
	subject, body := DeletionMessage(task, reason, refund)
	payload := map[string]any{
		"task_id":         task.ID,
		"action_kind":     task.ActionKind,
		"social_network":  task.SocialNetwork,
		"post_url":        task.PostURL,
		"deletion_reason": reason,
		"refund_amount":   refund.String(),
	}
	r := reason
	return n.enqueue(ctx, &models.Notification{
		IdempotencyKey:  deletionKey(task.ID),
		Kind:            models.NotificationTaskDeleted,
		TaskID:          task.ID,
		RecipientUserID: task.CreatorID,
		Reason:          &r,
		RefundAmount:    refund,
		Subject:         subject,
		Body:            body,
	}, payload)
}

func (n *Notifier) enqueue(ctx context.Context, row *models.Notification, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}
	row.ID = uuid.NewString()
	row.Payload = datatypes.JSON(raw)
	row.Status = models.NotificationPending
	row.MaxAttempts = n.MaxAttempts
	row.NextRetryAt = n.Now()

	created, err := n.Store.EnqueueNotification(ctx, row)
	if err != nil {
		return err
	}
	if created {
		log.Printf("[NOTIFY] 📨 Queued %s for %s (task %s)", row.Kind, row.RecipientUserID, row.TaskID)
	}
	return nil
}

// Backfill queues the notices that were lost between a commit and the
// enqueue: completion notices for COMPLETED tasks and deletion notices for
// DELETED tasks that have no outbox row of that kind. Tasks whose notice is
// already queued, sent or in the DLQ are not listed again, so each pass reaches
// new tasks. Returns the ids of the tasks that got a notice.
func (n *Notifier) Backfill(ctx context.Context, limit int) ([]string, error) {
	notSent := false
	completed, err := n.Store.ListTasks(ctx, store.TaskFilter{
		Statuses:            []models.TaskStatus{models.TaskStatusCompleted},
		CompletionEmailSent: &notSent,
		MissingNotice:       models.NotificationTaskCompleted,
		OldestFirst:         true,
		Limit:               limit,
	})
	if err != nil {
		return nil, err
	}
	deleted, err := n.Store.ListTasks(ctx, store.TaskFilter{
		Statuses:      []models.TaskStatus{models.TaskStatusDeleted},
		MissingNotice: models.NotificationTaskDeleted,
		OldestFirst:   true,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(completed)+len(deleted))
	for i := range completed {
		if err := n.TaskCompleted(ctx, &completed[i]); err != nil {
			log.Printf("[NOTIFY] ⚠️ Backfill failed for task %s: %v", completed[i].ID, err)
			continue
		}
		ids = append(ids, completed[i].ID)
	}
	for i := range deleted {
		task := &deleted[i]
		reason := models.DeletionNone
		if task.DeletionReason != nil {
			reason = *task.DeletionReason
		}
		// Counters are frozen once a task is deleted, so this is the refund
		// that was paid.
		refund := RefundFor(task.ActionsRequired, task.ActionsCompleted, task.Price)
		if err := n.TaskDeleted(ctx, task, reason, refund); err != nil {
			log.Printf("[NOTIFY] ⚠️ Deletion backfill failed for task %s: %v", task.ID, err)
			continue
		}
		ids = append(ids, task.ID)
	}
	return ids, nil
}
