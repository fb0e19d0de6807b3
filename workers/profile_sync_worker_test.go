package workers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"upvote-club/store"
)

func TestProfileSyncUpsertsActivityAndAdvancesCursor(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var gotSince, gotToken string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("since")
		gotToken = r.Header.Get("X-Service-Token")
		_ = json.NewEncoder(w).Encode(profileChangesResponse{Users: []RemoteProfile{
			{ExternalID: "u1", AccountStatus: "active", EmailVerified: true, UpdatedAt: updated},
			{ExternalID: "u2", AccountStatus: "suspended", EmailVerified: true, UpdatedAt: updated.Add(-time.Hour)},
			{ExternalID: "", AccountStatus: "active"},
		}})
	}))
	defer srv.Close()

	st := store.NewMemoryStore()
	w := NewProfileSyncWorker(st, srv.URL, "svc-token")

	if err := w.SyncOnce(t.Context()); err != nil {
		t.Fatalf("SyncOnce: %v", err)
	}
	if gotToken != "svc-token" {
		t.Fatalf("token=%q", gotToken)
	}
	if gotSince != "0001-01-01T00:00:00Z" {
		t.Fatalf("first since=%q", gotSince)
	}
	if !w.since.Equal(updated) {
		t.Fatalf("cursor=%v, want %v", w.since, updated)
	}

	p1, err := st.GetProfile(t.Context(), "u1")
	if err != nil || !p1.IsActive {
		t.Fatalf("u1=%+v err=%v, want active", p1, err)
	}
	p2, err := st.GetProfile(t.Context(), "u2")
	if err != nil || p2.IsActive {
		t.Fatalf("u2=%+v err=%v, want inactive", p2, err)
	}
}

func TestProfileSyncNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewProfileSyncWorker(store.NewMemoryStore(), srv.URL, "t")
	if err := w.SyncOnce(t.Context()); err == nil {
		t.Fatal("expected error")
	}
}
