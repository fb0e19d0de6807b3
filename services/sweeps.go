// services/sweeps.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"upvote-club/config"
	"upvote-club/models"
	"upvote-club/store"

	"github.com/shopspring/decimal"
)

// Sweep names accepted by Sweeper.Run, the admin endpoint and the CLI.
const (
	SweepForcedCompletion = "forced-completion"
	SweepStale            = "stale"
	SweepStaleDedicated   = "stale-dedicated"
	SweepReports          = "reports"
	SweepDuplicates       = "duplicates"
	SweepNotifyBackfill   = "notify-backfill"
)

var SweepNames = []string{
	SweepForcedCompletion, SweepStale, SweepStaleDedicated,
	SweepReports, SweepDuplicates, SweepNotifyBackfill,
}

var ErrUnknownSweep = errors.New("unknown sweep")

type SweepOutcome string

const (
	OutcomeDone    SweepOutcome = "done"
	OutcomeSkipped SweepOutcome = "skipped" // state changed under us
	OutcomeFailed  SweepOutcome = "failed"
)

type SweepItem struct {
	TaskID  string           `json:"task_id"`
	Outcome SweepOutcome     `json:"outcome"`
	Refund  *decimal.Decimal `json:"refund,omitempty"`
	Drafted int              `json:"drafted,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type SweepReport struct {
	Sweep      string      `json:"sweep"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Items      []SweepItem `json:"items"`
	Done       int         `json:"done"`
	Skipped    int         `json:"skipped"`
	Failed     int         `json:"failed"`
	ArchiveURL string      `json:"archive_url,omitempty"`
}

func (r *SweepReport) add(item SweepItem) {
	r.Items = append(r.Items, item)
	switch item.Outcome {
	case OutcomeDone:
		r.Done++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Sweeper runs the periodic passes that close, fill and clean up tasks. Every
// pass handles tasks one at a time; an error on one task is recorded and the
// pass moves on.
type Sweeper struct {
	Tasks    *TaskService
	Store    store.Store
	Notifier *Notifier
	Archiver ReportArchiver
	Alerter  Alerter

	StaleAfter       time.Duration
	StaleBatchSize   int
	DedicatedNetwork models.SocialNetwork

	Now func() time.Time
}

func NewSweeper(tasks *TaskService, notifier *Notifier, cfg *config.Config) (*Sweeper, error) {
	dedicated, err := models.ParseSocialNetwork(cfg.StaleDedicatedNetwork)
	if err != nil {
		return nil, fmt.Errorf("STALE_DEDICATED_NETWORK: %w", err)
	}
	return &Sweeper{
		Tasks:            tasks,
		Store:            tasks.Store,
		Notifier:         notifier,
		Alerter:          NopAlerter{},
		StaleAfter:       cfg.StaleAfter,
		StaleBatchSize:   cfg.StaleBatchSize,
		DedicatedNetwork: dedicated,
		Now:              time.Now,
	}, nil
}

// Run executes one pass by name.
func (s *Sweeper) Run(ctx context.Context, name string) (*SweepReport, error) {
	switch name {
	case SweepForcedCompletion:
		return s.RunForcedCompletion(ctx)
	case SweepStale:
		return s.RunStaleSweep(ctx)
	case SweepStaleDedicated:
		return s.RunDedicatedStaleSweep(ctx)
	case SweepReports:
		return s.RunReportSweep(ctx)
	case SweepDuplicates:
		return s.RunDuplicateCleanup(ctx)
	case SweepNotifyBackfill:
		return s.RunNotifyBackfill(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSweep, name)
	}
}

func (s *Sweeper) begin(name string) *SweepReport {
	return &SweepReport{Sweep: name, StartedAt: s.Now(), Items: []SweepItem{}}
}

func (s *Sweeper) finish(ctx context.Context, r *SweepReport) *SweepReport {
	r.FinishedAt = s.Now()
	log.Printf("[SWEEP] %s: %d done, %d skipped, %d failed in %v",
		r.Sweep, r.Done, r.Skipped, r.Failed, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	if s.Archiver != nil && len(r.Items) > 0 {
		url, err := s.Archiver.Archive(ctx, r)
		if err != nil {
			log.Printf("[SWEEP] ⚠️ Failed to archive %s report: %v", r.Sweep, err)
		} else {
			r.ArchiveURL = url
		}
	}

	if r.Failed > 0 && s.Alerter != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "🧹 Sweep %s finished with %d failures\n", r.Sweep, r.Failed)
		for _, it := range r.Items {
			if it.Outcome == OutcomeFailed {
				fmt.Fprintf(&b, "\n• %s: %s", it.TaskID, it.Error)
			}
		}
		if r.ArchiveURL != "" {
			fmt.Fprintf(&b, "\n\nReport: %s", r.ArchiveURL)
		}
		s.Alerter.Alert(AlertSweep, b.String())
	}
	return r
}

func outcomeFor(err error) SweepOutcome {
	switch {
	case err == nil:
		return OutcomeDone
	case isRejection(err):
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

// --- Sweep A: forced completion ---

// RunForcedCompletion fills the missing main actions of every COMPLETED task
// that was closed before reaching actions_required.
func (s *Sweeper) RunForcedCompletion(ctx context.Context) (*SweepReport, error) {
	report := s.begin(SweepForcedCompletion)

	tasks, err := s.Store.ListTasks(ctx, store.TaskFilter{
		Statuses:    []models.TaskStatus{models.TaskStatusCompleted},
		Underfilled: true,
		OldestFirst: true,
	})
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		drafted, err := s.ForceCompleteTask(ctx, tasks[i].ID)
		item := SweepItem{TaskID: tasks[i].ID, Outcome: outcomeFor(err), Drafted: drafted}
		if err != nil {
			item.Error = err.Error()
			log.Printf("[SWEEP] ❌ Forced completion of task %s: %v", tasks[i].ID, err)
		}
		report.add(item)
	}
	return s.finish(ctx, report), nil
}

// ForceCompleteTask drafts random active users as auto completers until the
// task's main counter reaches actions_required or the pool runs out. Each
// draftee is committed in its own transaction; a failing draftee is logged and
// the next candidate is tried. A short pool is not an error.
func (s *Sweeper) ForceCompleteTask(ctx context.Context, taskID string) (int, error) {
	task, err := s.Store.GetTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if task.Status != models.TaskStatusCompleted {
		return 0, models.ErrTaskNotActive
	}
	missing := task.MainRemaining()
	if missing == 0 {
		return 0, nil
	}

	candidates, err := s.Store.ListDraftCandidates(ctx, task.ID, task.CreatorID, missing+config.DraftCandidateSlack)
	if err != nil {
		return 0, err
	}

	drafted := 0
	for _, candidate := range candidates {
		if drafted >= missing {
			break
		}
		filled, err := s.draft(ctx, taskID, candidate.UserID)
		if err != nil && filled {
			break
		}
		if errors.Is(err, models.ErrTaskNotActive) || errors.Is(err, models.ErrTaskNotFound) {
			return drafted, err
		}
		if err != nil {
			log.Printf("[SWEEP] ⚠️ Could not draft %s for task %s: %v", candidate.UserID, taskID, err)
			continue
		}
		drafted++
		if filled {
			break
		}
	}

	if drafted < missing {
		log.Printf("[SWEEP] Task %s: drafted %d of %d missing completers (pool exhausted)", taskID, drafted, missing)
	} else {
		log.Printf("[SWEEP] ✅ Task %s: drafted %d auto completers", taskID, drafted)
	}
	return drafted, nil
}

// CompleteNow closes a task on an admin's request and fills its missing main
// actions right away. The completion notice is queued last so it carries the
// final counts. A drafting error is returned together with the closed task;
// the scheduled pass picks the task up again.
func (s *Sweeper) CompleteNow(ctx context.Context, taskID string) (*models.Task, int, error) {
	task, err := s.Tasks.closeTask(ctx, taskID)
	if err != nil {
		return nil, 0, err
	}

	drafted, draftErr := s.ForceCompleteTask(ctx, task.ID)
	if refreshed, err := s.Store.GetTask(ctx, task.ID); err == nil {
		task = refreshed
	}
	s.Tasks.notifyCompleted(ctx, task)
	return task, drafted, draftErr
}

// draft records one auto completion on the main counter. It reports whether
// the task has no main actions left afterwards.
func (s *Sweeper) draft(ctx context.Context, taskID, userID string) (bool, error) {
	filled := false
	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		task, err := tx.LockTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Status != models.TaskStatusCompleted {
			return models.ErrTaskNotActive
		}
		if task.MainRemaining() == 0 {
			filled = true
			return models.ErrNoRemainingActions
		}

		profile, err := tx.LockProfile(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := s.Tasks.recordCompletion(ctx, tx, task, profile, completionRecord{
			counter:  models.CounterMain,
			isAuto:   true,
			metadata: map[string]any{"source": SweepForcedCompletion},
		}); err != nil {
			return err
		}
		filled = task.MainRemaining() == 0
		return tx.SaveTask(ctx, task)
	})
	return filled, err
}

// --- Sweep B: staleness ---

// RunStaleSweep deletes the oldest ACTIVE tasks older than StaleAfter on every
// network except the dedicated one, at most StaleBatchSize per run.
func (s *Sweeper) RunStaleSweep(ctx context.Context) (*SweepReport, error) {
	report := s.begin(SweepStale)
	tasks, err := s.Store.ListTasks(ctx, store.TaskFilter{
		Statuses:       []models.TaskStatus{models.TaskStatusActive},
		ExcludeNetwork: s.DedicatedNetwork,
		CreatedBefore:  s.Now().Add(-s.StaleAfter),
		OldestFirst:    true,
		Limit:          s.StaleBatchSize,
	})
	if err != nil {
		return nil, err
	}
	s.deleteAll(ctx, report, tasks, models.DeletionAutoClose24h)
	return s.finish(ctx, report), nil
}

// RunDedicatedStaleSweep closes every stale ACTIVE task on the dedicated
// network, without a batch cap.
func (s *Sweeper) RunDedicatedStaleSweep(ctx context.Context) (*SweepReport, error) {
	report := s.begin(SweepStaleDedicated)
	tasks, err := s.Store.ListTasks(ctx, store.TaskFilter{
		Statuses:      []models.TaskStatus{models.TaskStatusActive},
		Network:       s.DedicatedNetwork,
		CreatedBefore: s.Now().Add(-s.StaleAfter),
		OldestFirst:   true,
	})
	if err != nil {
		return nil, err
	}
	s.deleteAll(ctx, report, tasks, models.DeletionAdmin24hClose)
	return s.finish(ctx, report), nil
}

// --- Sweep C: reports ---

// RunReportSweep deletes every ACTIVE task with a "link unavailable" report,
// whatever its age.
func (s *Sweeper) RunReportSweep(ctx context.Context) (*SweepReport, error) {
	report := s.begin(SweepReports)
	tasks, err := s.Store.ListTasks(ctx, store.TaskFilter{
		Statuses:    []models.TaskStatus{models.TaskStatusActive},
		ReportedFor: models.ReportLinkUnavailable,
		OldestFirst: true,
	})
	if err != nil {
		return nil, err
	}
	s.deleteAll(ctx, report, tasks, models.DeletionLinkUnavailable)
	return s.finish(ctx, report), nil
}

func (s *Sweeper) deleteAll(ctx context.Context, report *SweepReport, tasks []models.Task, reason models.DeletionReason) {
	for i := range tasks {
		report.add(s.deleteOne(ctx, tasks[i].ID, reason))
	}
}

func (s *Sweeper) deleteOne(ctx context.Context, taskID string, reason models.DeletionReason) SweepItem {
	res, err := s.Tasks.DeleteTask(ctx, DeleteTaskInput{
		TaskID:  taskID,
		Reason:  string(reason),
		ActorID: SystemActor,
		Admin:   true,
	})
	item := SweepItem{TaskID: taskID, Outcome: outcomeFor(err)}
	if err != nil {
		item.Error = err.Error()
		log.Printf("[SWEEP] ❌ Failed to delete task %s (%s): %v", taskID, reason, err)
		return item
	}
	item.Refund = &res.Refund
	return item
}

// --- Notification backfill ---

func (s *Sweeper) RunNotifyBackfill(ctx context.Context) (*SweepReport, error) {
	report := s.begin(SweepNotifyBackfill)
	if s.Notifier == nil {
		return s.finish(ctx, report), nil
	}
	ids, err := s.Notifier.Backfill(ctx, config.NotifyBackfillLimit)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		report.add(SweepItem{TaskID: id, Outcome: OutcomeDone})
	}
	return s.finish(ctx, report), nil
}
