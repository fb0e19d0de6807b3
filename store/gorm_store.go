// store/gorm_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"upvote-club/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func (s *GormStore) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// --- Tasks ---

func (s *GormStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.db(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *GormStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.db(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, notFound(err, models.ErrTaskNotFound)
	}
	return &task, nil
}

func (s *GormStore) LockTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.db(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, "id = ?", id).Error; err != nil {
		return nil, notFound(err, models.ErrTaskNotFound)
	}
	return &task, nil
}

func (s *GormStore) SaveTask(ctx context.Context, task *models.Task) error {
	if err := s.db(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

func (s *GormStore) ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	q := s.db(ctx).Model(&models.Task{})

	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.Network != "" {
		q = q.Where("social_network = ?", f.Network)
	}
	if f.ExcludeNetwork != "" {
		q = q.Where("social_network <> ?", f.ExcludeNetwork)
	}
	if !f.CreatedBefore.IsZero() {
		q = q.Where("created_at < ?", f.CreatedBefore)
	}
	if f.Underfilled {
		q = q.Where("actions_completed < actions_required")
	}
	if f.ReportedFor != "" {
		q = q.Where("EXISTS (SELECT 1 FROM task_reports r WHERE r.task_id = tasks.id AND r.reason = ?)", f.ReportedFor)
	}
	if f.CompletionEmailSent != nil {
		q = q.Where("completion_email_sent = ?", *f.CompletionEmailSent)
	}
	if f.MissingNotice != "" {
		q = q.Where("NOT EXISTS (SELECT 1 FROM notifications n WHERE n.task_id = tasks.id AND n.kind = ?)", f.MissingNotice)
	}
	if f.OldestFirst {
		q = q.Order("created_at ASC").Order("id ASC")
	} else {
		q = q.Order("created_at DESC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// --- Profiles ---

func (s *GormStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.db(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, models.ErrProfileNotFound)
	}
	return &p, nil
}

func (s *GormStore) LockProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.db(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, models.ErrProfileNotFound)
	}
	return &p, nil
}

func (s *GormStore) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	if err := s.db(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("create profile %s: %w", profile.UserID, err)
	}
	return nil
}

func (s *GormStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if err := s.db(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("save profile %s: %w", profile.UserID, err)
	}
	return nil
}

// UpsertProfileActivity inserts unknown users and refreshes is_active for known
// ones without touching balances or counters.
func (s *GormStore) UpsertProfileActivity(ctx context.Context, profiles []models.UserProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	err := s.db(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "updated_at"}),
	}).Create(&profiles).Error
	if err != nil {
		return fmt.Errorf("upsert %d profile(s): %w", len(profiles), err)
	}
	return nil
}

// ListDraftCandidates returns active users, in random order, who are neither
// the creator nor an existing completer of the task.
func (s *GormStore) ListDraftCandidates(ctx context.Context, taskID, creatorID string, limit int) ([]models.UserProfile, error) {
	completers := s.db(ctx).Model(&models.TaskCompletion{}).Select("user_id").Where("task_id = ?", taskID)

	var out []models.UserProfile
	err := s.db(ctx).
		Where("is_active = ?", true).
		Where("user_id <> ?", creatorID).
		Where("user_id NOT IN (?)", completers).
		Order("RANDOM()").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list draft candidates for task %s: %w", taskID, err)
	}
	return out, nil
}

// --- Completions ---

func (s *GormStore) CreateCompletion(ctx context.Context, completion *models.TaskCompletion) error {
	if err := s.db(ctx).Create(completion).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicateCompletion
		}
		return fmt.Errorf("create completion: %w", err)
	}
	return nil
}

func (s *GormStore) ListCompletions(ctx context.Context, taskID string) ([]models.TaskCompletion, error) {
	var out []models.TaskCompletion
	if err := s.db(ctx).Where("task_id = ?", taskID).Order("completed_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list completions for task %s: %w", taskID, err)
	}
	return out, nil
}

// --- Ledger ---

func (s *GormStore) AddTransaction(ctx context.Context, entry *models.PointTransaction) error {
	if err := s.db(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("add ledger entry: %w", err)
	}
	return nil
}

func (s *GormStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.PointTransaction, error) {
	q := s.db(ctx).Model(&models.PointTransaction{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.TaskID != "" {
		q = q.Where("task_id = ?", f.TaskID)
	}
	if !f.After.IsZero() {
		q = q.Where("created_at > ?", f.After)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.PointTransaction
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return out, nil
}

// --- Reports and payments ---

func (s *GormStore) CreateReport(ctx context.Context, report *models.TaskReport) error {
	if err := s.db(ctx).Create(report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicateReport
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *GormStore) CreatePaymentCredit(ctx context.Context, credit *models.PaymentCredit) error {
	if err := s.db(ctx).Create(credit).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicatePayment
		}
		return fmt.Errorf("create payment credit: %w", err)
	}
	return nil
}

// --- Notification outbox ---

func (s *GormStore) EnqueueNotification(ctx context.Context, n *models.Notification) (bool, error) {
	res := s.db(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(n)
	if res.Error != nil {
		return false, fmt.Errorf("enqueue notification %s: %w", n.IdempotencyKey, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) ListDueNotifications(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := s.db(ctx).
		Where("status = ? AND next_retry_at <= ?", models.NotificationPending, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	return out, nil
}

func (s *GormStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	if err := s.db(ctx).Save(n).Error; err != nil {
		return fmt.Errorf("save notification %s: %w", n.ID, err)
	}
	return nil
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
