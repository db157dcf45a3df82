package services

import (
	"context"
	"testing"
	"time"

	"unity-gaming/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.TournamentStatus
		ok       bool
	}{
		{models.TournamentStatusOpen, models.TournamentStatusInProgress, true},
		{models.TournamentStatusClosed, models.TournamentStatusInProgress, true},
		{models.TournamentStatusInProgress, models.TournamentStatusCompleted, true},
		{models.TournamentStatusOpen, models.TournamentStatusClosed, false},
		{models.TournamentStatusOpen, models.TournamentStatusCompleted, false},
		{models.TournamentStatusCompleted, models.TournamentStatusOpen, false},
		{models.TournamentStatusInProgress, models.TournamentStatusOpen, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCheckOpen(t *testing.T) {
	assert.NoError(t, CheckOpen(&models.Tournament{Status: models.TournamentStatusOpen, MaxParticipants: 2, CurrentParticipants: 1}))
	assert.ErrorIs(t, CheckOpen(&models.Tournament{Status: models.TournamentStatusOpen, MaxParticipants: 2, CurrentParticipants: 2}), ErrTournamentFull)
	assert.ErrorIs(t, CheckOpen(&models.Tournament{Status: models.TournamentStatusClosed, MaxParticipants: 2, CurrentParticipants: 2}), ErrRegistrationClosed)
	assert.ErrorIs(t, CheckOpen(&models.Tournament{Status: models.TournamentStatusInProgress, MaxParticipants: 2}), ErrRegistrationClosed)
}

func TestIncrementParticipant_ClosesOnLastSeat(t *testing.T) {
	env := newTestEnv(t, "0")
	tr := env.tournament(t, "0", 2, 0, models.TournamentStatusOpen)

	for i := 1; i <= 2; i++ {
		err := env.db.Transaction(func(tx *gorm.DB) error {
			_, err := env.tournaments.IncrementParticipant(tx, tr.ID)
			return err
		})
		require.NoError(t, err)
	}

	got := env.reload(t, tr.ID)
	assert.Equal(t, 2, got.CurrentParticipants)
	assert.Equal(t, models.TournamentStatusClosed, got.Status)

	err := env.db.Transaction(func(tx *gorm.DB) error {
		_, err := env.tournaments.IncrementParticipant(tx, tr.ID)
		return err
	})
	assert.ErrorIs(t, err, ErrTournamentFull)
	assert.Equal(t, 2, env.reload(t, tr.ID).CurrentParticipants)
}

func TestCreate_AssignsSlugAndDefaults(t *testing.T) {
	env := newTestEnv(t, "0")
	ctx := context.Background()
	start := time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)

	in := CreateTournamentInput{
		Name:            "Spring Clash!",
		Game:            "Valorant",
		EntryFee:        money("5"),
		MaxParticipants: 16,
		StartDate:       start,
	}
	first, err := env.tournaments.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "spring-clash", first.Slug)
	assert.Equal(t, models.TournamentStatusOpen, first.Status)
	assert.Equal(t, "/placeholder.svg", first.Thumbnail)
	assert.True(t, first.EndDate.Equal(start.Add(48*time.Hour)))

	second, err := env.tournaments.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "spring-clash-")
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t, "0")
	ctx := context.Background()
	start := time.Now().Add(time.Hour)

	bad := []CreateTournamentInput{
		{Game: "X", MaxParticipants: 1, StartDate: start},
		{Name: "X", MaxParticipants: 1, StartDate: start},
		{Name: "X", Game: "X", StartDate: start},
		{Name: "X", Game: "X", MaxParticipants: 1, EntryFee: money("-1"), StartDate: start},
		{Name: "X", Game: "X", MaxParticipants: 1, EntryFee: money("1.005"), StartDate: start},
		{Name: "X", Game: "X", MaxParticipants: 1},
		{Name: "X", Game: "X", MaxParticipants: 1, StartDate: start, EndDate: start.Add(-time.Hour)},
	}
	for i, in := range bad {
		_, err := env.tournaments.Create(ctx, in)
		assert.ErrorIsf(t, err, ErrInvalidInput, "case %d", i)
	}
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t, "0")
	ctx := context.Background()
	tr := env.tournament(t, "0", 4, 0, models.TournamentStatusOpen)

	_, err := env.tournaments.UpdateStatus(ctx, tr.ID, models.TournamentStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.tournaments.UpdateStatus(ctx, tr.ID, "Paused")
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := env.tournaments.UpdateStatus(ctx, tr.ID, models.TournamentStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusInProgress, got.Status)

	_, err = env.tournaments.UpdateStatus(ctx, "missing", models.TournamentStatusInProgress)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdvanceSchedule(t *testing.T) {
	env := newTestEnv(t, "0")
	ctx := context.Background()
	now := time.Now().UTC()

	future := env.tournament(t, "0", 4, 0, models.TournamentStatusOpen)
	due := env.tournament(t, "0", 4, 0, models.TournamentStatusOpen)
	ended := env.tournament(t, "0", 4, 0, models.TournamentStatusOpen)
	require.NoError(t, env.db.Model(&models.Tournament{}).Where("id = ?", due.ID).
		Updates(map[string]interface{}{"start_date": now.Add(-time.Hour), "end_date": now.Add(time.Hour)}).Error)
	require.NoError(t, env.db.Model(&models.Tournament{}).Where("id = ?", ended.ID).
		Updates(map[string]interface{}{"start_date": now.Add(-3 * time.Hour), "end_date": now.Add(-time.Hour)}).Error)

	started, completed, err := env.tournaments.AdvanceSchedule(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, started)
	assert.EqualValues(t, 1, completed)

	assert.Equal(t, models.TournamentStatusOpen, env.reload(t, future.ID).Status)
	assert.Equal(t, models.TournamentStatusInProgress, env.reload(t, due.ID).Status)
	assert.Equal(t, models.TournamentStatusCompleted, env.reload(t, ended.ID).Status)
}

func TestSeedSampleTournaments_OnlyWhenEmpty(t *testing.T) {
	env := newTestEnv(t, "0")
	ctx := context.Background()
	now := time.Now().UTC()

	n, err := env.tournaments.SeedSampleTournaments(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, len(sampleTournaments), n)

	n, err = env.tournaments.SeedSampleTournaments(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := env.tournaments.List(ctx, TournamentFilter{})
	require.NoError(t, err)
	require.Len(t, list, len(sampleTournaments))
	assert.Equal(t, "Winter Championship 2024", list[0].Name)
	assert.Equal(t, models.TournamentStatusClosed, list[0].Status)
	for _, tr := range list {
		assert.LessOrEqual(t, tr.CurrentParticipants, tr.MaxParticipants)
		assert.True(t, tr.StartDate.After(now))
	}

	started, _, err := env.tournaments.AdvanceSchedule(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, started)

	open, err := env.tournaments.List(ctx, TournamentFilter{Status: models.TournamentStatusOpen, Game: "valorant"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Valorant Pro Series", open[0].Name)
}

func TestSeedSampleTournaments_LosingConcurrentSeedIsNoop(t *testing.T) {
	env := newTestEnv(t, "0")
	ctx := context.Background()
	require.NoError(t, env.db.Callback().Create().Before("gorm:create").Register("test:slug_taken", func(d *gorm.DB) {
		if d.Statement.Table == "tournaments" {
			d.AddError(gorm.ErrDuplicatedKey)
		}
	}))

	n, err := env.tournaments.SeedSampleTournaments(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := env.tournaments.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
