package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"unity-gaming/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService reads and maintains the local profile rows.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// UserSummary is the public card shown in search results and chat lists.
type UserSummary struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Avatar     string   `json:"avatar"`
	SkillLevel string   `json:"skill_level,omitempty"`
	Location   string   `json:"location,omitempty"`
	Games      []string `json:"games"`
	MainGame   string   `json:"main_game"`
	IsOnline   bool     `json:"is_online"`
}

// Summarize builds the public card for u as of now.
func Summarize(u *models.User, now time.Time) UserSummary {
	games := u.Games()
	if games == nil {
		games = []string{}
	}
	avatar := u.Avatar
	if avatar == "" {
		avatar = "/placeholder.svg"
	}
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		Avatar:     avatar,
		SkillLevel: u.SkillLevel,
		Location:   u.Location,
		Games:      games,
		MainGame:   u.PrimaryGame(),
		IsOnline:   models.IsOnline(u.LastActive, now),
	}
}

// Profile is a user's public page.
type Profile struct {
	UserSummary
	Bio         string                      `json:"bio,omitempty"`
	JoinedAt    time.Time                   `json:"joined_at"`
	Videos      []models.Video              `json:"videos"`
	Matchmaking []models.MatchmakingProfile `json:"matchmaking"`
	Tournaments int64                       `json:"tournaments"`
	TotalViews  int64                       `json:"total_views"`
}

// Get loads one user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Profile assembles the public page: published public videos, active
// matchmaking cards and registration count.
func (s *UserService) Profile(ctx context.Context, id string, now time.Time) (*Profile, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	p := &Profile{
		UserSummary: Summarize(u, now),
		Bio:         u.Bio,
		JoinedAt:    u.CreatedAt,
	}
	if err := db.Where("user_id = ? AND status = ? AND visibility = ?", id, models.VideoStatusPublished, models.VideoVisibilityPublic).
		Order("created_at DESC").Limit(20).Find(&p.Videos).Error; err != nil {
		return nil, err
	}
	for _, v := range p.Videos {
		p.TotalViews += v.Views
	}
	if err := db.Where("user_id = ? AND is_active = ?", id, true).Find(&p.Matchmaking).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.TournamentRegistration{}).Where("user_id = ?", id).Count(&p.Tournaments).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Search matches username (case-insensitive substring) and preferred game,
// excluding the caller.
func (s *UserService) Search(ctx context.Context, callerID, query, game string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	db := s.DB.WithContext(ctx).Model(&models.User{}).Where("id <> ?", callerID).Limit(limit)
	if q := strings.TrimSpace(query); q != "" {
		db = db.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if g := strings.TrimSpace(game); g != "" {
		db = db.Where("LOWER(preferred_games) LIKE ?", "%"+strings.ToLower(g)+"%")
	}
	var users []models.User
	if err := db.Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// Heartbeat marks the user active at now, creating a placeholder profile
// for users the sync has not delivered yet.
func (s *UserService) Heartbeat(ctx context.Context, id, username string, now time.Time) error {
	if username == "" {
		username = "player-" + shortID(id)
	}
	u := models.User{ID: id, Username: username, LastActive: &now}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"last_active": now}),
	}).Create(&u).Error
}

// OnlineUsers returns users active within the online window, excluding callerID.
func (s *UserService) OnlineUsers(ctx context.Context, callerID string, now time.Time) ([]models.User, error) {
	var users []models.User
	err := s.DB.WithContext(ctx).
		Where("id <> ? AND last_active >= ?", callerID, now.Add(-models.OnlineWindow)).
		Order("id").
		Find(&users).Error
	return users, err
}

// Upsert writes profile fields from the sync feed, keeping presence.
func (s *UserService) Upsert(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "avatar", "bio", "location", "skill_level", "preferred_games", "updated_at"}),
	}).Create(&users).Error
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
