package services

import (
	"context"
	"testing"
	"time"

	"unity-gaming/database"
	"unity-gaming/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	now := time.Now()
	recent := now.Add(-time.Minute)

	s := Summarize(&models.User{ID: "u1", Username: "Ace", PreferredGames: "Valorant, Dota 2", LastActive: &recent}, now)
	assert.Equal(t, []string{"Valorant", "Dota 2"}, s.Games)
	assert.Equal(t, "Valorant", s.MainGame)
	assert.Equal(t, "/placeholder.svg", s.Avatar)
	assert.True(t, s.IsOnline)

	empty := Summarize(&models.User{ID: "u2"}, now)
	assert.Equal(t, []string{}, empty.Games)
	assert.Equal(t, "Various", empty.MainGame)
	assert.False(t, empty.IsOnline)
}

func TestUsers_HeartbeatCreatesAndRefreshes(t *testing.T) {
	db := database.OpenTest(t)
	svc := NewUserService(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, svc.Heartbeat(ctx, "abcdef123456", "", now.Add(-time.Hour)))
	u, err := svc.Get(ctx, "abcdef123456")
	require.NoError(t, err)
	assert.Equal(t, "player-abcdef12", u.Username)

	online, err := svc.OnlineUsers(ctx, "someone-else", now)
	require.NoError(t, err)
	assert.Empty(t, online)

	require.NoError(t, svc.Heartbeat(ctx, "abcdef123456", "ignored", now))
	online, err = svc.OnlineUsers(ctx, "someone-else", now)
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, "player-abcdef12", online[0].Username)
}

func TestUsers_SearchAndUpsert(t *testing.T) {
	db := database.OpenTest(t)
	svc := NewUserService(db)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, []models.User{
		{ID: "1", Username: "ProShooter", PreferredGames: "Call of Duty"},
		{ID: "2", Username: "ShooterGirl", PreferredGames: "Valorant"},
		{ID: "3", Username: "Tactician", PreferredGames: "Valorant"},
	}))

	got, err := svc.Search(ctx, "1", "shooter", "", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ShooterGirl", got[0].Username)

	got, err = svc.Search(ctx, "", "", "valorant", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, svc.Upsert(ctx, []models.User{{ID: "3", Username: "Tactician", Bio: "IGL", PreferredGames: "CS2"}}))
	u, err := svc.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "IGL", u.Bio)
	assert.Equal(t, "CS2", u.PreferredGames)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsers_Profile(t *testing.T) {
	db := database.OpenTest(t)
	svc := NewUserService(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, db.Create(&models.User{ID: "u1", Username: "Ace", Bio: "hi"}).Error)
	require.NoError(t, db.Create(&[]models.Video{
		{ID: "v1", UserID: "u1", Title: "a", ObjectKey: "a", Views: 10, Status: models.VideoStatusPublished, Visibility: models.VideoVisibilityPublic},
		{ID: "v2", UserID: "u1", Title: "b", ObjectKey: "b", Views: 5, Status: models.VideoStatusPublished, Visibility: models.VideoVisibilityPrivate},
	}).Error)
	require.NoError(t, db.Create(&models.TournamentRegistration{ID: "r1", UserID: "u1", TournamentID: "t1", Status: models.RegistrationStatusRegistered}).Error)

	p, err := svc.Profile(ctx, "u1", now)
	require.NoError(t, err)
	assert.Equal(t, "hi", p.Bio)
	assert.Len(t, p.Videos, 1)
	assert.EqualValues(t, 10, p.TotalViews)
	assert.EqualValues(t, 1, p.Tournaments)
}

func TestSeedSampleUsers_Idempotent(t *testing.T) {
	env := newTestEnv(t, "100")
	ctx := context.Background()

	require.NoError(t, SeedSampleUsers(ctx, env.db, env.wallets, time.Now()))
	require.NoError(t, SeedSampleUsers(ctx, env.db, env.wallets, time.Now()))

	var users, videos, wallets int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, env.db.Model(&models.Video{}).Count(&videos).Error)
	require.NoError(t, env.db.Model(&models.Wallet{}).Count(&wallets).Error)
	assert.EqualValues(t, len(sampleUsers), users)
	assert.EqualValues(t, len(sampleVideos), videos)
	assert.EqualValues(t, len(sampleUsers), wallets)
}
