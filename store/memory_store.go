// store/memory_store.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"upvote-club/models"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-process Store used by tests and dry runs. A
// transaction holds the store-wide mutex for its whole duration, which
// serialises it against every other call the way row locks would, and
// restores a snapshot when fn returns an error.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
}

type memoryData struct {
	tasks         map[string]models.Task
	profiles      map[string]models.UserProfile
	completions   []models.TaskCompletion
	transactions  []models.PointTransaction
	reports       []models.TaskReport
	payments      map[string]models.PaymentCredit
	notifications map[string]models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			tasks:         map[string]models.Task{},
			profiles:      map[string]models.UserProfile{},
			payments:      map[string]models.PaymentCredit{},
			notifications: map[string]models.Notification{},
		},
	}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

// --- Tasks ---

func (s *MemoryStore) CreateTask(ctx context.Context, task *models.Task) error {
	defer s.lock()()
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	s.data.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (s *MemoryStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	defer s.lock()()
	t, ok := s.data.tasks[id]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	out := cloneTask(t)
	return &out, nil
}

func (s *MemoryStore) LockTask(ctx context.Context, id string) (*models.Task, error) {
	return s.GetTask(ctx, id)
}

func (s *MemoryStore) SaveTask(ctx context.Context, task *models.Task) error {
	defer s.lock()()
	task.UpdatedAt = time.Now()
	s.data.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (s *MemoryStore) ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	defer s.lock()()

	var out []models.Task
	for _, t := range s.data.tasks {
		if !s.matches(t, f) {
			continue
		}
		out = append(out, cloneTask(t))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		if f.OldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) matches(t models.Task, f TaskFilter) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if t.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Network != "" && t.SocialNetwork != f.Network {
		return false
	}
	if f.ExcludeNetwork != "" && t.SocialNetwork == f.ExcludeNetwork {
		return false
	}
	if !f.CreatedBefore.IsZero() && !t.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	if f.Underfilled && t.ActionsCompleted >= t.ActionsRequired {
		return false
	}
	if f.ReportedFor != "" && !s.reported(t.ID, f.ReportedFor) {
		return false
	}
	if f.CompletionEmailSent != nil && t.CompletionEmailSent != *f.CompletionEmailSent {
		return false
	}
	if f.MissingNotice != "" && s.noticed(t.ID, f.MissingNotice) {
		return false
	}
	return true
}

func (s *MemoryStore) noticed(taskID string, kind models.NotificationKind) bool {
	for _, n := range s.data.notifications {
		if n.TaskID == taskID && n.Kind == kind {
			return true
		}
	}
	return false
}

func (s *MemoryStore) reported(taskID string, reason models.ReportReason) bool {
	for _, r := range s.data.reports {
		if r.TaskID == taskID && r.Reason == reason {
			return true
		}
	}
	return false
}

// --- Profiles ---

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	defer s.lock()()
	p, ok := s.data.profiles[userID]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	return &p, nil
}

func (s *MemoryStore) LockProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.GetProfile(ctx, userID)
}

func (s *MemoryStore) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	defer s.lock()()
	now := time.Now()
	profile.CreatedAt, profile.UpdatedAt = now, now
	s.data.profiles[profile.UserID] = *profile
	return nil
}

func (s *MemoryStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	defer s.lock()()
	profile.UpdatedAt = time.Now()
	s.data.profiles[profile.UserID] = *profile
	return nil
}

func (s *MemoryStore) UpsertProfileActivity(ctx context.Context, profiles []models.UserProfile) error {
	defer s.lock()()
	now := time.Now()
	for _, in := range profiles {
		if existing, ok := s.data.profiles[in.UserID]; ok {
			existing.IsActive = in.IsActive
			existing.UpdatedAt = now
			s.data.profiles[in.UserID] = existing
			continue
		}
		in.CreatedAt, in.UpdatedAt = now, now
		s.data.profiles[in.UserID] = in
	}
	return nil
}

// ListDraftCandidates orders candidates by user id so tests are deterministic.
func (s *MemoryStore) ListDraftCandidates(ctx context.Context, taskID, creatorID string, limit int) ([]models.UserProfile, error) {
	defer s.lock()()

	completed := map[string]bool{}
	for _, c := range s.data.completions {
		if c.TaskID == taskID {
			completed[c.UserID] = true
		}
	}

	var out []models.UserProfile
	for _, p := range s.data.profiles {
		if !p.IsActive || p.UserID == creatorID || completed[p.UserID] {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Completions ---

func (s *MemoryStore) CreateCompletion(ctx context.Context, completion *models.TaskCompletion) error {
	defer s.lock()()
	for _, c := range s.data.completions {
		if c.TaskID == completion.TaskID && c.UserID == completion.UserID && c.ActionKind == completion.ActionKind {
			return models.ErrDuplicateCompletion
		}
	}
	completion.CreatedAt = time.Now()
	s.data.completions = append(s.data.completions, *completion)
	return nil
}

func (s *MemoryStore) ListCompletions(ctx context.Context, taskID string) ([]models.TaskCompletion, error) {
	defer s.lock()()
	var out []models.TaskCompletion
	for _, c := range s.data.completions {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- Ledger ---

func (s *MemoryStore) AddTransaction(ctx context.Context, entry *models.PointTransaction) error {
	defer s.lock()()
	entry.CreatedAt = time.Now()
	s.data.transactions = append(s.data.transactions, *entry)
	return nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.PointTransaction, error) {
	defer s.lock()()
	var out []models.PointTransaction
	for _, e := range s.data.transactions {
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.TaskID != "" && (e.TaskID == nil || *e.TaskID != f.TaskID) {
			continue
		}
		if !f.After.IsZero() && !e.CreatedAt.After(f.After) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// --- Reports and payments ---

func (s *MemoryStore) CreateReport(ctx context.Context, report *models.TaskReport) error {
	defer s.lock()()
	for _, r := range s.data.reports {
		if r.TaskID == report.TaskID && r.UserID == report.UserID {
			return models.ErrDuplicateReport
		}
	}
	report.CreatedAt = time.Now()
	s.data.reports = append(s.data.reports, *report)
	return nil
}

func (s *MemoryStore) CreatePaymentCredit(ctx context.Context, credit *models.PaymentCredit) error {
	defer s.lock()()
	if _, ok := s.data.payments[credit.PaymentID]; ok {
		return models.ErrDuplicatePayment
	}
	credit.CreatedAt = time.Now()
	s.data.payments[credit.PaymentID] = *credit
	return nil
}

// --- Notification outbox ---

func (s *MemoryStore) EnqueueNotification(ctx context.Context, n *models.Notification) (bool, error) {
	defer s.lock()()
	for _, existing := range s.data.notifications {
		if existing.IdempotencyKey == n.IdempotencyKey {
			return false, nil
		}
	}
	now := time.Now()
	n.CreatedAt, n.UpdatedAt = now, now
	s.data.notifications[n.ID] = *n
	return true, nil
}

func (s *MemoryStore) ListDueNotifications(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	defer s.lock()()
	var out []models.Notification
	for _, n := range s.data.notifications {
		if n.Status == models.NotificationPending && !n.NextRetryAt.After(now) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextRetryAt.Before(out[j].NextRetryAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	defer s.lock()()
	n.UpdatedAt = time.Now()
	s.data.notifications[n.ID] = *n
	return nil
}

// Notifications returns every outbox row; used by tests and the CLI.
func (s *MemoryStore) Notifications() []models.Notification {
	defer s.lock()()
	out := make([]models.Notification, 0, len(s.data.notifications))
	for _, n := range s.data.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IdempotencyKey < out[j].IdempotencyKey })
	return out
}

// TotalBalance sums every profile balance; used to check point conservation.
func (s *MemoryStore) TotalBalance() decimal.Decimal {
	defer s.lock()()
	total := decimal.Zero
	for _, p := range s.data.profiles {
		total = total.Add(p.Balance)
	}
	return total
}

func (d *memoryData) clone() *memoryData {
	out := &memoryData{
		tasks:         make(map[string]models.Task, len(d.tasks)),
		profiles:      make(map[string]models.UserProfile, len(d.profiles)),
		completions:   append([]models.TaskCompletion(nil), d.completions...),
		transactions:  append([]models.PointTransaction(nil), d.transactions...),
		reports:       append([]models.TaskReport(nil), d.reports...),
		payments:      make(map[string]models.PaymentCredit, len(d.payments)),
		notifications: make(map[string]models.Notification, len(d.notifications)),
	}
	for k, v := range d.tasks {
		out.tasks[k] = cloneTask(v)
	}
	for k, v := range d.profiles {
		out.profiles[k] = v
	}
	for k, v := range d.payments {
		out.payments[k] = v
	}
	for k, v := range d.notifications {
		out.notifications[k] = v
	}
	return out
}

// cloneTask copies pointer fields so callers never alias stored state.
func cloneTask(t models.Task) models.Task {
	if t.TargetIdentifier != nil {
		v := *t.TargetIdentifier
		t.TargetIdentifier = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		t.CompletedAt = &v
	}
	if t.CompletionDuration != nil {
		v := *t.CompletionDuration
		t.CompletionDuration = &v
	}
	if t.DeletionReason != nil {
		v := *t.DeletionReason
		t.DeletionReason = &v
	}
	if t.DeletedAt != nil {
		v := *t.DeletedAt
		t.DeletedAt = &v
	}
	return t
}
