// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"upvote-club/config"
	"upvote-club/models"
	"upvote-club/store"
	"upvote-club/utils"

	"github.com/shopspring/decimal"
)

// RemoteProfile is one entry of the profile service's change feed.
type RemoteProfile struct {
	ExternalID    string    `json:"external_id"`
	AccountStatus string    `json:"account_status"`
	EmailVerified bool      `json:"email_verified"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Active users are the pool forced completion drafts from.
func (p RemoteProfile) Active() bool {
	return strings.EqualFold(p.AccountStatus, "active") && p.EmailVerified
}

type profileChangesResponse struct {
	Users []RemoteProfile `json:"users"`
}

// ProfileSyncWorker mirrors account activity from the profile service into
// user_profiles.is_active.
type ProfileSyncWorker struct {
	store        store.Store
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client

	since time.Time
}

func NewProfileSyncWorker(st store.Store, baseURL, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		store:        st,
		interval:     config.ProfileSyncInterval,
		baseURL:      baseURL,
		endpointPath: "/api/v1/public/profiles",
		serviceToken: serviceToken,
		httpClient:   utils.NewHTTPClient(config.ProfileSyncTimeout),
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Profile Sync Worker (profile service → user_profiles)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	if err := w.SyncOnce(ctx); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.SyncOnce(ctx); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Profile Sync Worker stopped")
			return
		}
	}
}

// SyncOnce pulls changes since the last seen update and upserts them.
func (w *ProfileSyncWorker) SyncOnce(ctx context.Context) error {
	users, err := w.fetch(ctx, w.since)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	profiles := make([]models.UserProfile, 0, len(users))
	latest := w.since
	for _, u := range users {
		if u.ExternalID == "" {
			continue
		}
		profiles = append(profiles, models.UserProfile{
			UserID:   u.ExternalID,
			Balance:  decimal.Zero,
			IsActive: u.Active(),
		})
		if u.UpdatedAt.After(latest) {
			latest = u.UpdatedAt
		}
	}

	if err := w.store.UpsertProfileActivity(ctx, profiles); err != nil {
		return err
	}
	w.since = latest
	log.Printf("[SYNC] ✅ Synced %d profile(s), cursor=%s", len(profiles), latest.Format(time.RFC3339))
	return nil
}

func (w *ProfileSyncWorker) fetch(ctx context.Context, since time.Time) ([]RemoteProfile, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[SYNC] ❌ Profile service returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("profile service non-200 response: %d", resp.StatusCode)
	}

	var out profileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode profile service response: %w", err)
	}
	return out.Users, nil
}
