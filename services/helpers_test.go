package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"upvote-club/config"
	"upvote-club/models"
	"upvote-club/store"

	"github.com/shopspring/decimal"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeResolver struct {
	id  string
	err error
}

func (r fakeResolver) Resolve(ctx context.Context, network models.SocialNetwork, postURL string) (string, error) {
	return r.id, r.err
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (a *recordingAlerter) Alert(topic AlertTopic, text string) {
	a.mu.Lock()
	a.alerts = append(a.alerts, text)
	a.mu.Unlock()
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

type testEnv struct {
	ctx      context.Context
	st       *store.MemoryStore
	clock    *fakeClock
	notifier *Notifier
	tasks    *TaskService
	sweeper  *Sweeper
	alerter  *recordingAlerter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}

	notifier := NewNotifier(st, 3)
	notifier.Now = clock.Now

	tasks := NewTaskService(st, notifier, fakeResolver{id: "12345"}, models.NetworkTwitter)
	tasks.Now = clock.Now

	sweeper, err := NewSweeper(tasks, notifier, &config.Config{
		StaleAfter:            24 * time.Hour,
		StaleBatchSize:        10,
		StaleDedicatedNetwork: "TWITTER",
	})
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	alerter := &recordingAlerter{}
	sweeper.Alerter = alerter
	sweeper.Now = clock.Now

	return &testEnv{
		ctx:      context.Background(),
		st:       st,
		clock:    clock,
		notifier: notifier,
		tasks:    tasks,
		sweeper:  sweeper,
		alerter:  alerter,
	}
}

func (e *testEnv) profile(t *testing.T, userID string, balance int64, quota int) {
	t.Helper()
	err := e.st.CreateProfile(e.ctx, &models.UserProfile{
		UserID:         userID,
		Balance:        decimal.NewFromInt(balance),
		AvailableTasks: quota,
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("create profile %s: %v", userID, err)
	}
}

func (e *testEnv) users(t *testing.T, prefix string, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%02d", prefix, i)
		e.profile(t, ids[i], 0, 0)
	}
	return ids
}

func (e *testEnv) createTask(t *testing.T, in CreateTaskInput) *models.Task {
	t.Helper()
	if in.SocialNetwork == "" {
		in.SocialNetwork = "REDDIT"
	}
	if in.ActionKind == "" {
		in.ActionKind = "LIKE"
	}
	if in.PostURL == "" {
		in.PostURL = "https://reddit.com/r/golang/comments/abc"
	}
	task, err := e.tasks.CreateTask(e.ctx, in)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func (e *testEnv) complete(t *testing.T, taskID, userID string, kind models.ActionKind) *CompletionResult {
	t.Helper()
	res, err := e.tasks.SubmitCompletion(e.ctx, CompletionInput{TaskID: taskID, UserID: userID, ActionKind: string(kind)})
	if err != nil {
		t.Fatalf("SubmitCompletion(%s, %s): %v", taskID, userID, err)
	}
	return res
}

func (e *testEnv) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	p, err := e.st.GetProfile(e.ctx, userID)
	if err != nil {
		t.Fatalf("GetProfile(%s): %v", userID, err)
	}
	return p.Balance
}

func (e *testEnv) task(t *testing.T, id string) *models.Task {
	t.Helper()
	task, err := e.st.GetTask(e.ctx, id)
	if err != nil {
		t.Fatalf("GetTask(%s): %v", id, err)
	}
	return task
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
