package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"upvote-club/config"
	"upvote-club/models"
	"upvote-club/services"
	"upvote-club/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type testApp struct {
	app *fiber.App
	st  *store.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	st := store.NewMemoryStore()
	engine, err := services.NewEngine(context.Background(), &config.Config{
		FollowLookupNetwork:   "TWITTER",
		StaleDedicatedNetwork: "TWITTER",
		StaleAfter:            24 * time.Hour,
		StaleBatchSize:        10,
		NotifyTransport:       config.TransportLog,
		NotifyMaxAttempts:     3,
	}, st)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	app := fiber.New()
	SetupRoutes(app, engine)
	return &testApp{app: app, st: st}
}

func (a *testApp) profile(t *testing.T, userID string, balance int64, quota int) {
	t.Helper()
	if err := a.st.CreateProfile(context.Background(), &models.UserProfile{
		UserID: userID, Balance: decimal.NewFromInt(balance), AvailableTasks: quota, IsActive: true,
	}); err != nil {
		t.Fatal(err)
	}
}

// do sends a request as userID (no identity headers when empty) and decodes
// the JSON response into out when out is non-nil.
func (a *testApp) do(t *testing.T, method, path, userID, roles string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if roles != "" {
		req.Header.Set("X-User-Roles", roles)
	}

	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (a *testApp) createTask(t *testing.T, creator string) models.Task {
	t.Helper()
	var task models.Task
	status := a.do(t, http.MethodPost, "/tasks", creator, "", fiber.Map{
		"social_network":   "reddit",
		"action_kind":      "like",
		"post_url":         "https://reddit.com/r/golang/comments/abc",
		"price":            10,
		"actions_required": 3,
	}, &task)
	if status != fiber.StatusCreated {
		t.Fatalf("create task status=%d", status)
	}
	return task
}

func TestHealthIsOpen(t *testing.T) {
	a := newTestApp(t)
	if status := a.do(t, http.MethodGet, "/health", "", "", nil, nil); status != fiber.StatusOK {
		t.Fatalf("status=%d", status)
	}
	if status := a.do(t, http.MethodGet, "/tasks/abc", "", "", nil, nil); status != fiber.StatusUnauthorized {
		t.Fatalf("secured route without user: status=%d", status)
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	a := newTestApp(t)
	a.profile(t, "creator", 100, 2)
	a.profile(t, "worker", 0, 0)
	a.profile(t, "broke", 5, 1)

	task := a.createTask(t, "creator")
	if task.Status != models.TaskStatusActive || task.OriginalPrice != 30 {
		t.Fatalf("task=%+v", task)
	}

	status := a.do(t, http.MethodPost, "/tasks", "broke", "", fiber.Map{
		"social_network": "REDDIT", "action_kind": "LIKE", "post_url": "https://reddit.com/x", "price": 10, "actions_required": 1,
	}, nil)
	if status != fiber.StatusPaymentRequired {
		t.Fatalf("insufficient balance status=%d", status)
	}

	path := "/tasks/" + task.ID + "/completions"
	if status := a.do(t, http.MethodPost, path, "worker", "", fiber.Map{"action_kind": "LIKE"}, nil); status != fiber.StatusCreated {
		t.Fatalf("completion status=%d", status)
	}
	if status := a.do(t, http.MethodPost, path, "worker", "", fiber.Map{"action_kind": "LIKE"}, nil); status != fiber.StatusConflict {
		t.Fatalf("duplicate completion status=%d", status)
	}
	if status := a.do(t, http.MethodPost, path, "creator", "", fiber.Map{"action_kind": "LIKE"}, nil); status != fiber.StatusForbidden {
		t.Fatalf("self completion status=%d", status)
	}

	var list struct {
		Count int `json:"count"`
	}
	a.do(t, http.MethodGet, path, "creator", "", nil, &list)
	if list.Count != 1 {
		t.Fatalf("completions=%d", list.Count)
	}

	if status := a.do(t, http.MethodDelete, "/tasks/"+task.ID, "worker", "", nil, nil); status != fiber.StatusForbidden {
		t.Fatalf("delete by non-owner status=%d", status)
	}

	var res struct {
		Task   models.Task     `json:"task"`
		Refund decimal.Decimal `json:"refund"`
	}
	if status := a.do(t, http.MethodDelete, "/tasks/"+task.ID, "creator", "", nil, &res); status != fiber.StatusOK {
		t.Fatalf("delete status=%d", status)
	}
	if !res.Refund.Equal(decimal.NewFromInt(20)) || *res.Task.DeletionReason != models.DeletionUserRequest {
		t.Fatalf("delete result=%+v", res)
	}
	if status := a.do(t, http.MethodDelete, "/tasks/"+task.ID, "creator", "", nil, nil); status != fiber.StatusConflict {
		t.Fatalf("second delete status=%d", status)
	}

	var balance models.UserProfile
	a.do(t, http.MethodGet, "/users/me/balance", "creator", "", nil, &balance)
	if !balance.Balance.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("creator balance=%s, want 90", balance.Balance)
	}

	if status := a.do(t, http.MethodGet, "/tasks/missing", "creator", "", nil, nil); status != fiber.StatusNotFound {
		t.Fatalf("missing task status=%d", status)
	}
}

func TestAdminRoutes(t *testing.T) {
	a := newTestApp(t)
	a.profile(t, "creator", 100, 2)
	a.profile(t, "d1", 0, 0)
	a.profile(t, "d2", 0, 0)
	task := a.createTask(t, "creator")

	if status := a.do(t, http.MethodPost, "/admin/sweeps/stale", "creator", "", nil, nil); status != fiber.StatusForbidden {
		t.Fatalf("non-admin status=%d", status)
	}
	if status := a.do(t, http.MethodPost, "/admin/sweeps/vacuum", "ops", "admin", nil, nil); status != fiber.StatusNotFound {
		t.Fatalf("unknown sweep status=%d", status)
	}
	var report services.SweepReport
	if status := a.do(t, http.MethodPost, "/admin/sweeps/Stale", "ops", "Admin", nil, &report); status != fiber.StatusOK || report.Sweep != services.SweepStale {
		t.Fatalf("sweep status=%d report=%+v", status, report)
	}

	var done struct {
		Task    models.Task `json:"task"`
		Drafted int         `json:"drafted"`
	}
	if status := a.do(t, http.MethodPost, "/admin/tasks/"+task.ID+"/complete", "ops", "admin", nil, &done); status != fiber.StatusOK {
		t.Fatalf("complete status=%d", status)
	}
	if done.Drafted != 2 || done.Task.Status != models.TaskStatusCompleted || done.Task.ActionsCompleted != 2 {
		t.Fatalf("complete result=%+v", done)
	}

	var stats services.DispatchStats
	if status := a.do(t, http.MethodPost, "/admin/notifications/dispatch", "ops", "admin", nil, &stats); status != fiber.StatusOK || stats.Sent != 1 {
		t.Fatalf("dispatch status=%d stats=%+v", status, stats)
	}

	other := a.createTask(t, "creator")
	if status := a.do(t, http.MethodDelete, "/admin/tasks/"+other.ID, "ops", "admin", nil, nil); status != fiber.StatusBadRequest {
		t.Fatalf("admin delete without reason status=%d", status)
	}
	if status := a.do(t, http.MethodDelete, "/admin/tasks/"+other.ID+"?reason=bogus", "ops", "admin", nil, nil); status != fiber.StatusBadRequest {
		t.Fatalf("admin delete with unknown reason status=%d", status)
	}
	if status := a.do(t, http.MethodDelete, "/admin/tasks/"+other.ID, "ops", "admin", fiber.Map{"reason": "double_account"}, nil); status != fiber.StatusOK {
		t.Fatalf("admin delete status=%d", status)
	}
}

func TestPaymentCreditAndHistory(t *testing.T) {
	a := newTestApp(t)

	body := fiber.Map{"payment_id": "pay_9", "user_id": "buyer", "points": "250", "tasks": 5}
	if status := a.do(t, http.MethodPost, "/payments/credit", "", "", body, nil); status != fiber.StatusOK {
		t.Fatalf("credit status=%d", status)
	}
	if status := a.do(t, http.MethodPost, "/payments/credit", "", "", body, nil); status != fiber.StatusConflict {
		t.Fatalf("replayed credit status=%d", status)
	}

	var history struct {
		Entries []models.PointTransaction `json:"entries"`
		Count   int                       `json:"count"`
	}
	a.do(t, http.MethodGet, "/users/me/ledger?limit=10", "buyer", "", nil, &history)
	if history.Count != 1 || history.Entries[0].Kind != models.TxPaymentCredit {
		t.Fatalf("history=%+v", history)
	}
	if status := a.do(t, http.MethodGet, "/users/me/ledger?after=yesterday", "buyer", "", nil, nil); status != fiber.StatusBadRequest {
		t.Fatalf("bad cursor status=%d", status)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrTaskNotFound, fiber.StatusNotFound},
		{models.ErrInsufficientBalance, fiber.StatusPaymentRequired},
		{models.ErrTaskNotActive, fiber.StatusUnprocessableEntity},
		{errors.Join(models.ErrTargetLookupFailed, io.EOF), fiber.StatusBadGateway},
		{errors.Join(errors.New("wrapped"), models.ErrDuplicatePayment), fiber.StatusConflict},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Errorf("statusFor(%v)=%d, want %d", c.err, got, c.want)
		}
	}
}

func TestStoredIDsSurviveLaterRequests(t *testing.T) {
	a := newTestApp(t)
	a.profile(t, "creator", 100, 1)
	a.profile(t, "reporter", 0, 0)

	task := a.createTask(t, "creator")
	if status := a.do(t, http.MethodPost, "/tasks/"+task.ID+"/reports", "reporter", "", nil, nil); status != fiber.StatusCreated {
		t.Fatalf("report status=%d", status)
	}

	// Unrelated traffic reuses fiber's request buffers.
	for i := 0; i < 3; i++ {
		a.do(t, http.MethodGet, "/tasks/zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz", "zzzzzzz", "zzzzz", nil, nil)
		a.do(t, http.MethodGet, "/users/me/balance", "yyyyyyyy", "", nil, nil)
	}

	stored, err := a.st.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.CreatorID != "creator" {
		t.Fatalf("stored CreatorID=%q, want %q", stored.CreatorID, "creator")
	}

	var report services.SweepReport
	if status := a.do(t, http.MethodPost, "/admin/sweeps/reports", "ops", "admin", nil, &report); status != fiber.StatusOK {
		t.Fatalf("reports sweep status=%d", status)
	}
	if report.Done != 1 || report.Items[0].TaskID != task.ID {
		t.Fatalf("report sweep=%+v, want the reported task deleted", report)
	}
}
