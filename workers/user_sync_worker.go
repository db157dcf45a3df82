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

	"unity-gaming/models"
	"unity-gaming/services"

	"gorm.io/gorm"
)

// RemoteProfile is one user as served by the profile service.
type RemoteProfile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	Location       *string   `json:"location,omitempty"`
	SkillLevel     *string   `json:"skill_level,omitempty"`
	PreferredGames []string  `json:"preferred_games,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the profile feed.
type GetProfileChangesResponse struct {
	Users []RemoteProfile `json:"users"`
}

func (p RemoteProfile) toUser() models.User {
	u := models.User{
		ID:             p.ID,
		Username:       p.Username,
		Email:          p.Email,
		PreferredGames: strings.Join(p.PreferredGames, ","),
	}
	if p.AvatarURL != nil {
		u.Avatar = *p.AvatarURL
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.SkillLevel != nil {
		u.SkillLevel = *p.SkillLevel
	}
	if !p.UpdatedAt.IsZero() {
		u.UpdatedAt = p.UpdatedAt
	}
	return u
}

// ProfileSyncWorker mirrors profile changes into the users table.
type ProfileSyncWorker struct {
	db           *gorm.DB
	users        *services.UserService
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(db *gorm.DB, users *services.UserService, baseURL, serviceToken string, interval time.Duration) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		users:        users,
		interval:     interval,
		baseURL:      baseURL,
		endpointPath: "/api/v1/public/profiles",
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("[SYNC] 🔁 Starting profile sync worker (profile-service → users)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	if _, err := w.SyncOnce(ctx, time.Time{}); err != nil {
		log.Printf("[SYNC] ⚠️ Initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx, w.lastSyncTime(ctx)); err != nil {
				log.Printf("[SYNC] ❌ Sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("[SYNC] ⏹️ Profile sync worker stopped")
			return
		}
	}
}

// lastSyncTime is the newest updated_at among mirrored users.
func (w *ProfileSyncWorker) lastSyncTime(ctx context.Context) time.Time {
	var u models.User
	err := w.db.WithContext(ctx).Order("updated_at DESC").Limit(1).Find(&u).Error
	if err != nil || u.UpdatedAt.IsZero() {
		return time.Unix(0, 0)
	}
	return u.UpdatedAt
}

// SyncOnce fetches profiles changed since `since` and upserts them. It
// returns how many rows were written.
func (w *ProfileSyncWorker) SyncOnce(ctx context.Context, since time.Time) (int, error) {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return 0, fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	if w.serviceToken != "" {
		req.Header.Set("X-Service-Token", w.serviceToken)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("profile service returned %d: %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode profile service response: %w", err)
	}
	if len(response.Users) == 0 {
		return 0, nil
	}

	users := make([]models.User, 0, len(response.Users))
	for _, p := range response.Users {
		if p.ID == "" || p.Username == "" {
			log.Printf("[SYNC] ⚠️ Skipping profile without id/username: %+v", p)
			continue
		}
		users = append(users, p.toUser())
	}
	if err := w.users.Upsert(ctx, users); err != nil {
		return 0, fmt.Errorf("upsert users: %w", err)
	}
	log.Printf("[SYNC] ✅ Synced %d user(s) since %s", len(users), sinceStr)
	return len(users), nil
}
