// store/store.go
package store

import (
	"context"
	"time"

	"upvote-club/models"
)

// Store is every persistence operation the task engine needs. Lock* methods
// take a row lock that is held until the surrounding Transaction ends; callers
// lock the task row before any profile row.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// Tasks
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	LockTask(ctx context.Context, id string) (*models.Task, error)
	SaveTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Profiles
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	LockProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	UpsertProfileActivity(ctx context.Context, profiles []models.UserProfile) error
	ListDraftCandidates(ctx context.Context, taskID, creatorID string, limit int) ([]models.UserProfile, error)

	// Completions
	CreateCompletion(ctx context.Context, completion *models.TaskCompletion) error
	ListCompletions(ctx context.Context, taskID string) ([]models.TaskCompletion, error)

	// Ledger
	AddTransaction(ctx context.Context, entry *models.PointTransaction) error
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.PointTransaction, error)

	// Reports and payments
	CreateReport(ctx context.Context, report *models.TaskReport) error
	CreatePaymentCredit(ctx context.Context, credit *models.PaymentCredit) error

	// Notification outbox. EnqueueNotification returns false when a row with
	// the same idempotency key already exists.
	EnqueueNotification(ctx context.Context, n *models.Notification) (bool, error)
	ListDueNotifications(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
	SaveNotification(ctx context.Context, n *models.Notification) error
}

// TaskFilter narrows ListTasks. Zero values mean "no constraint".
type TaskFilter struct {
	Statuses            []models.TaskStatus
	Network             models.SocialNetwork // only this network
	ExcludeNetwork      models.SocialNetwork // every network but this one
	CreatedBefore       time.Time
	Underfilled         bool                // actions_completed < actions_required
	ReportedFor         models.ReportReason // at least one report with this reason
	CompletionEmailSent *bool
	MissingNotice       models.NotificationKind // no outbox row of this kind exists for the task
	OldestFirst         bool
	Limit               int
}

type TransactionFilter struct {
	UserID string
	TaskID string
	After  time.Time // strictly newer entries only
	Limit  int
}
