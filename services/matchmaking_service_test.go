package services

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"unity-gaming/database"
	"unity-gaming/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCompatibilityScore(t *testing.T) {
	me := &models.User{PreferredGames: "Valorant, Call of Duty", SkillLevel: "Diamond"}

	twin := &models.User{PreferredGames: "valorant,Call of Duty", SkillLevel: "diamond"}
	// 50 + 2 shared games + both play Valorant + same tier
	assert.Equal(t, 90, CompatibilityScore(me, twin, "Valorant"))
	assert.Equal(t, 80, CompatibilityScore(me, twin, anyGame))

	stranger := &models.User{PreferredGames: "Chess", SkillLevel: "Bronze"}
	// 50 - 5*(4-1)
	assert.Equal(t, 35, CompatibilityScore(me, stranger, "Valorant"))

	unranked := &models.User{}
	assert.Equal(t, 50, CompatibilityScore(me, unranked, ""))

	neighbour := &models.User{PreferredGames: "Valorant", SkillLevel: "Platinum"}
	assert.Equal(t, 75, CompatibilityScore(me, neighbour, "Valorant"))
}

func TestCompatibilityScore_Clamped(t *testing.T) {
	a := &models.User{PreferredGames: "A,B,C,D,E", SkillLevel: "Gold"}
	b := &models.User{PreferredGames: "A,B,C,D,E", SkillLevel: "Gold"}
	assert.Equal(t, 100, CompatibilityScore(a, b, "A"))

	low := &models.User{SkillLevel: "Bronze"}
	high := &models.User{SkillLevel: "Grandmaster"}
	for i := 0; i < 3; i++ {
		score := CompatibilityScore(low, high, "")
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func seedPlayers(t *testing.T, db *gorm.DB, now time.Time) {
	t.Helper()
	recent := now.Add(-time.Minute)
	stale := now.Add(-time.Hour)
	users := []models.User{
		{ID: "me", Username: "Me", PreferredGames: "Valorant", SkillLevel: "Gold", LastActive: &recent},
		{ID: "ally", Username: "Ally", PreferredGames: "Valorant,Dota 2", SkillLevel: "Gold", LastActive: &recent},
		{ID: "rival", Username: "Rival", PreferredGames: "Valorant", SkillLevel: "Bronze", LastActive: &recent},
		{ID: "idle", Username: "Idle", PreferredGames: "Dota 2", SkillLevel: "Gold", LastActive: &stale},
	}
	require.NoError(t, db.Create(&users).Error)
}

func TestMatchmaking_FindRanksByCompatibility(t *testing.T) {
	db := database.OpenTest(t)
	now := time.Now().UTC()
	seedPlayers(t, db, now)
	svc := NewMatchmakingService(db, rand.New(rand.NewPCG(1, 2)))
	svc.Now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.UpsertProfile(ctx, "ally", ProfileInput{Game: "Valorant", Rank: "Gold II", PreferredRole: "Duelist", WinRate: 55.5, HoursPlayed: 300})
	require.NoError(t, err)

	players, err := svc.Find(ctx, "me", MatchFilter{Game: "Valorant"})
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "ally", players[0].ID)
	assert.Equal(t, "Gold II", players[0].Rank)
	assert.Equal(t, "Duelist", players[0].PreferredRole)
	assert.True(t, players[0].IsOnline)
	assert.Greater(t, players[0].MatchCompatibility, players[1].MatchCompatibility)

	gold, err := svc.Find(ctx, "me", MatchFilter{Game: anyGame, SkillLevel: "Gold"})
	require.NoError(t, err)
	ids := []string{}
	for _, p := range gold {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"ally", "idle"}, ids)

	_, err = svc.Find(ctx, "ghost", MatchFilter{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchmaking_QuickMatchPicksOnlinePlayerAndRecords(t *testing.T) {
	db := database.OpenTest(t)
	now := time.Now().UTC()
	seedPlayers(t, db, now)
	svc := NewMatchmakingService(db, rand.New(rand.NewPCG(7, 7)))
	svc.Now = func() time.Time { return now }
	ctx := context.Background()

	match, err := svc.QuickMatch(ctx, "me")
	require.NoError(t, err)
	assert.Contains(t, []string{"ally", "rival"}, match.ID)

	history, err := svc.History(ctx, "me")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, match.ID, history[0].Player.ID)
	assert.Equal(t, models.MatchTypeQuick, history[0].MatchType)
	assert.Equal(t, "Active", history[0].Status)

	other, err := svc.History(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "me", other[0].Player.ID)
}

func TestMatchmaking_QuickMatchNobodyOnline(t *testing.T) {
	db := database.OpenTest(t)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.User{ID: "me", Username: "Me", LastActive: &now}).Error)
	svc := NewMatchmakingService(db, nil)
	svc.Now = func() time.Time { return now }

	_, err := svc.QuickMatch(context.Background(), "me")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchmaking_RecordSearchMatch(t *testing.T) {
	db := database.OpenTest(t)
	now := time.Now().UTC()
	seedPlayers(t, db, now)
	svc := NewMatchmakingService(db, nil)
	ctx := context.Background()

	m, err := svc.RecordSearchMatch(ctx, "me", "rival", MatchFilter{Game: "Valorant", SkillLevel: "Bronze"})
	require.NoError(t, err)
	assert.Equal(t, models.MatchTypeSearch, m.MatchType)
	assert.Equal(t, "Valorant", m.Game)
	assert.JSONEq(t, `{"game":"Valorant","skillLevel":"Bronze"}`, string(m.Filters))
}

func TestMatchmaking_UpsertProfile(t *testing.T) {
	db := database.OpenTest(t)
	svc := NewMatchmakingService(db, nil)
	ctx := context.Background()

	_, err := svc.UpsertProfile(ctx, "me", ProfileInput{Game: "Valorant", Rank: "Silver", WinRate: 40})
	require.NoError(t, err)
	inactive := false
	p, err := svc.UpsertProfile(ctx, "me", ProfileInput{Game: "Valorant", Rank: "Gold", WinRate: 60, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Gold", p.Rank)
	assert.False(t, p.IsActive)

	var n int64
	require.NoError(t, db.Model(&models.MatchmakingProfile{}).Where("user_id = ?", "me").Count(&n).Error)
	assert.EqualValues(t, 1, n)

	_, err = svc.UpsertProfile(ctx, "me", ProfileInput{Game: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.UpsertProfile(ctx, "me", ProfileInput{Game: "X", WinRate: 101})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
