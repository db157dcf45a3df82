package services

import (
	"context"
	"testing"
	"time"

	"unity-gaming/database"
	"unity-gaming/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db            *gorm.DB
	ledger        *LedgerStore
	wallets       *WalletService
	tournaments   *TournamentService
	registrations *RegistrationService
}

func newTestEnv(t *testing.T, startingBalance string) *testEnv {
	t.Helper()
	db := database.OpenTest(t)
	ledger := NewLedgerStore(db)
	wallets := NewWalletService(db, ledger, decimal.RequireFromString(startingBalance))
	tournaments := NewTournamentService(db)
	return &testEnv{
		db:            db,
		ledger:        ledger,
		wallets:       wallets,
		tournaments:   tournaments,
		registrations: NewRegistrationService(db, wallets, tournaments),
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, money(want).Equal(got), "want %s, got %s", want, got.String())
}

func (e *testEnv) tournament(t *testing.T, fee string, max, current int, status models.TournamentStatus) *models.Tournament {
	t.Helper()
	start := time.Now().UTC().Add(72 * time.Hour)
	tr := &models.Tournament{
		ID:                  uuid.NewString(),
		Name:                "Cup " + uuid.NewString()[:8],
		Game:                "Valorant",
		PrizePool:           "$1,000",
		EntryFee:            money(fee),
		MaxParticipants:     max,
		CurrentParticipants: current,
		Status:              status,
		StartDate:           start,
		EndDate:             start.Add(48 * time.Hour),
	}
	require.NoError(t, e.db.Transaction(func(tx *gorm.DB) error {
		return e.tournaments.createTx(tx, tr)
	}))
	return tr
}

func (e *testEnv) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	b, err := e.wallets.Balance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func (e *testEnv) reload(t *testing.T, id string) *models.Tournament {
	t.Helper()
	tr, err := e.tournaments.GetTournament(context.Background(), id)
	require.NoError(t, err)
	return tr
}
