// services/task_delete.go
package services

import (
	"context"
	"log"

	"upvote-club/models"
	"upvote-club/store"

	"github.com/shopspring/decimal"
)

// SystemActor is the actor id recorded for sweep-driven deletions.
const SystemActor = "system"

type DeleteTaskInput struct {
	TaskID  string
	Reason  string
	ActorID string
	Admin   bool // admins and sweeps may use any reason on any task
}

type DeletionResult struct {
	Task   models.Task     `json:"task"`
	Refund decimal.Decimal `json:"refund"`
}

// DeleteTask moves a live (ACTIVE or PAUSED) task to DELETED and refunds the
// creator for the main actions that were never completed. Deleting twice is
// rejected with ErrTaskAlreadyDeleted and never refunds again.
func (s *TaskService) DeleteTask(ctx context.Context, in DeleteTaskInput) (*DeletionResult, error) {
	reason, err := models.ParseDeletionReason(in.Reason)
	if err != nil {
		return nil, err
	}
	if !in.Admin && reason != models.DeletionUserRequest {
		return nil, models.ErrReasonNotAllowed
	}

	var result DeletionResult
	err = s.Store.Transaction(ctx, func(tx store.Store) error {
		task, err := tx.LockTask(ctx, in.TaskID)
		if err != nil {
			return err
		}
		if task.Status == models.TaskStatusDeleted {
			return models.ErrTaskAlreadyDeleted
		}
		if !task.Status.IsLive() {
			return models.ErrTaskNotActive
		}
		if !in.Admin && task.CreatorID != in.ActorID {
			return models.ErrNotTaskOwner
		}

		refund := RefundFor(task.ActionsRequired, task.ActionsCompleted, task.Price)
		if refund.IsPositive() {
			creator, err := tx.LockProfile(ctx, task.CreatorID)
			if err != nil {
				return err
			}
			if err := credit(ctx, tx, creator, refund, models.TxDeletionRefund, task.ID, string(reason)); err != nil {
				return err
			}
		}

		task.MarkDeleted(reason, s.Now())
		if err := tx.SaveTask(ctx, task); err != nil {
			return err
		}
		result = DeletionResult{Task: *task, Refund: refund}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[TASKS] 🗑️ Task %s deleted (reason=%s, actor=%s), refunded %s to %s",
		in.TaskID, reason, in.ActorID, result.Refund, result.Task.CreatorID)

	if s.Notifier != nil {
		if err := s.Notifier.TaskDeleted(ctx, &result.Task, reason, result.Refund); err != nil {
			log.Printf("[TASKS] ⚠️ Failed to enqueue deletion notice for task %s: %v", in.TaskID, err)
		}
	}
	return &result, nil
}
