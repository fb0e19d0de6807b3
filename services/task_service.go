// services/task_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"upvote-club/models"
	"upvote-club/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TaskService owns every legal state transition of a task and the point
// movements tied to them.
type TaskService struct {
	Store    store.Store
	Notifier *Notifier
	Targets  TargetResolver

	// FOLLOW tasks on this network resolve their target before creation.
	FollowLookupNetwork models.SocialNetwork

	Now func() time.Time
}

func NewTaskService(st store.Store, notifier *Notifier, targets TargetResolver, followLookupNetwork models.SocialNetwork) *TaskService {
	return &TaskService{
		Store:               st,
		Notifier:            notifier,
		Targets:             targets,
		FollowLookupNetwork: followLookupNetwork,
		Now:                 time.Now,
	}
}

type CompletionInput struct {
	TaskID      string
	UserID      string
	ActionKind  string
	PostURL     string         // defaults to the task's post URL
	CompletedAt *time.Time     // defaults to now
	Metadata    map[string]any // free-form, stored as JSON
}

type CompletionResult struct {
	Completion models.TaskCompletion `json:"completion"`
	Task       models.Task           `json:"task"`
	Balance    decimal.Decimal       `json:"balance"`
}

// SubmitCompletion records one user's completion of a task. The completion
// row, the counter increment, the reward credit and a possible COMPLETED
// transition commit together; the completion notice is sent afterwards and
// cannot undo them.
func (s *TaskService) SubmitCompletion(ctx context.Context, in CompletionInput) (*CompletionResult, error) {
	kind, err := models.ParseActionKind(in.ActionKind)
	if err != nil {
		return nil, err
	}

	var result CompletionResult
	completedNow := false

	err = s.Store.Transaction(ctx, func(tx store.Store) error {
		task, err := tx.LockTask(ctx, in.TaskID)
		if err != nil {
			return err
		}
		if task.Status != models.TaskStatusActive {
			return models.ErrTaskNotActive
		}
		if task.ActionKind != kind {
			return models.ErrActionKindMismatch
		}
		if task.CreatorID == in.UserID {
			return models.ErrSelfCompletion
		}

		profile, err := tx.LockProfile(ctx, in.UserID)
		if err != nil {
			return err
		}

		counter, err := NextCounter(task)
		if err != nil {
			return err
		}

		completion, err := s.recordCompletion(ctx, tx, task, profile, completionRecord{
			counter:     counter,
			postURL:     in.PostURL,
			completedAt: in.CompletedAt,
			metadata:    in.Metadata,
		})
		if err != nil {
			return err
		}

		if task.MeetsCompletionCriterion() {
			task.MarkCompleted(s.Now())
			completedNow = true
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			return err
		}

		result = CompletionResult{Completion: *completion, Task: *task, Balance: profile.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[TASKS] ✅ Completion %s: user=%s task=%s counter=%s reward=%s (%d/%d main, %d/%d bonus)",
		result.Completion.ID, in.UserID, in.TaskID, result.Completion.Counter, result.Completion.Reward,
		result.Task.ActionsCompleted, result.Task.ActionsRequired,
		result.Task.BonusActionsCompleted, result.Task.BonusActions)

	if completedNow {
		log.Printf("[TASKS] 🏁 Task %s completed after %v", result.Task.ID, *result.Task.CompletionDuration)
		s.notifyCompleted(ctx, &result.Task)
	}
	return &result, nil
}

type completionRecord struct {
	counter     models.CompletionCounter
	isAuto      bool
	postURL     string
	completedAt *time.Time
	metadata    map[string]any
}

// recordCompletion inserts the completion row, advances the chosen counter and
// credits the completer. task and profile must be locked by tx.
func (s *TaskService) recordCompletion(ctx context.Context, tx store.Store, task *models.Task, profile *models.UserProfile, rec completionRecord) (*models.TaskCompletion, error) {
	completedAt := s.Now()
	if rec.completedAt != nil {
		completedAt = *rec.completedAt
	}
	postURL := rec.postURL
	if postURL == "" {
		postURL = task.PostURL
	}

	completion := &models.TaskCompletion{
		ID:          uuid.NewString(),
		TaskID:      task.ID,
		UserID:      profile.UserID,
		ActionKind:  task.ActionKind,
		CompletedAt: completedAt,
		PostURL:     postURL,
		IsAuto:      rec.isAuto,
		Counter:     rec.counter,
		Reward:      RewardPerAction(task.OriginalPrice, task.ActionsRequired),
	}
	if len(rec.metadata) > 0 {
		raw, err := json.Marshal(rec.metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata: %v", models.ErrInvalidTask, err)
		}
		completion.Metadata = datatypes.JSON(raw)
	}

	if err := tx.CreateCompletion(ctx, completion); err != nil {
		return nil, err
	}

	switch rec.counter {
	case models.CounterBonus:
		task.BonusActionsCompleted++
		profile.BonusTasksCompleted++
	default:
		task.ActionsCompleted++
	}
	profile.CompletedTasksCount++

	if err := credit(ctx, tx, profile, completion.Reward, models.TxCompletionReward, task.ID, completion.ID); err != nil {
		return nil, err
	}
	return completion, nil
}

// MarkCompleted is the admin transition to COMPLETED regardless of counters.
// Missing main actions are filled afterwards by the forced-completion sweep.
func (s *TaskService) MarkCompleted(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.closeTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.notifyCompleted(ctx, task)
	return task, nil
}

// closeTask moves a live task to COMPLETED without queueing the notice.
func (s *TaskService) closeTask(ctx context.Context, taskID string) (*models.Task, error) {
	var out models.Task
	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		task, err := tx.LockTask(ctx, taskID)
		if err != nil {
			return err
		}
		switch {
		case task.Status == models.TaskStatusDeleted:
			return models.ErrTaskAlreadyDeleted
		case !task.Status.IsLive():
			return models.ErrTaskNotActive
		}
		task.MarkCompleted(s.Now())
		if err := tx.SaveTask(ctx, task); err != nil {
			return err
		}
		out = *task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[TASKS] 🏁 Task %s marked completed by admin (%d/%d main actions)", out.ID, out.ActionsCompleted, out.ActionsRequired)
	return &out, nil
}

func (s *TaskService) PauseTask(ctx context.Context, taskID, userID string) (*models.Task, error) {
	return s.setPaused(ctx, taskID, userID, true)
}

func (s *TaskService) ResumeTask(ctx context.Context, taskID, userID string) (*models.Task, error) {
	return s.setPaused(ctx, taskID, userID, false)
}

func (s *TaskService) setPaused(ctx context.Context, taskID, userID string, pause bool) (*models.Task, error) {
	var out models.Task
	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		task, err := tx.LockTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task.CreatorID != userID {
			return models.ErrNotTaskOwner
		}
		if pause {
			if task.Status != models.TaskStatusActive {
				return models.ErrTaskNotActive
			}
			task.Status = models.TaskStatusPaused
		} else {
			if task.Status != models.TaskStatusPaused {
				return models.ErrTaskNotPaused
			}
			task.Status = models.TaskStatusActive
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			return err
		}
		out = *task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReportTask files a "link unavailable" report; the report sweep deletes
// reported tasks with a refund.
func (s *TaskService) ReportTask(ctx context.Context, taskID, userID string) (*models.TaskReport, error) {
	task, err := s.Store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusActive {
		return nil, models.ErrTaskNotActive
	}

	report := &models.TaskReport{
		ID:     uuid.NewString(),
		TaskID: taskID,
		UserID: userID,
		Reason: models.ReportLinkUnavailable,
	}
	if err := s.Store.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	log.Printf("[TASKS] 🚩 Task %s reported (%s) by %s", taskID, report.Reason, userID)
	return report, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	return s.Store.GetTask(ctx, taskID)
}

func (s *TaskService) ListCompletions(ctx context.Context, taskID string) ([]models.TaskCompletion, error) {
	if _, err := s.Store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.Store.ListCompletions(ctx, taskID)
}

func (s *TaskService) notifyCompleted(ctx context.Context, task *models.Task) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.TaskCompleted(ctx, task); err != nil {
		// The backfill pass re-enqueues completed tasks whose notice never went out.
		log.Printf("[TASKS] ⚠️ Failed to enqueue completion notice for task %s: %v", task.ID, err)
	}
}

// isRejection reports whether err is a business rule rejection rather than an
// infrastructure failure.
func isRejection(err error) bool {
	for _, target := range []error{
		models.ErrTaskNotActive, models.ErrTaskAlreadyDeleted, models.ErrActionKindMismatch,
		models.ErrDuplicateCompletion, models.ErrSelfCompletion, models.ErrNoRemainingActions,
		models.ErrInsufficientBalance, models.ErrNoAvailableTasks, models.ErrProfileNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
