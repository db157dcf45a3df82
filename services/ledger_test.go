package services

import (
	"context"
	"testing"

	"unity-gaming/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLedger_EntriesAreImmutable(t *testing.T) {
	env := newTestEnv(t, "100")
	ctx := context.Background()

	entry, err := env.wallets.Credit(ctx, "u1", money("5"), PaymentMethodCard)
	require.NoError(t, err)

	err = env.db.Model(entry).Update("description", "rewritten").Error
	assert.ErrorIs(t, err, models.ErrImmutableTransaction)

	err = env.db.Delete(entry).Error
	assert.ErrorIs(t, err, models.ErrImmutableTransaction)

	var stored models.Transaction
	require.NoError(t, env.db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, entry.Description, stored.Description)
}

func TestLedger_ApplyRejectsNegativeResult(t *testing.T) {
	env := newTestEnv(t, "10")
	_, err := env.wallets.EnsureWallet(context.Background(), "u1")
	require.NoError(t, err)

	err = env.db.Transaction(func(tx *gorm.DB) error {
		w, err := env.ledger.LockWallet(tx, "u1")
		require.NoError(t, err)
		return env.ledger.Apply(tx, w, &models.Transaction{
			Amount:          money("10.01"),
			TransactionType: models.TransactionTypeWithdraw,
		})
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	requireMoney(t, "10", env.balance(t, "u1"))
}

func TestLedger_ApplyRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t, "10")
	_, err := env.wallets.EnsureWallet(context.Background(), "u1")
	require.NoError(t, err)

	err = env.db.Transaction(func(tx *gorm.DB) error {
		w, err := env.ledger.LockWallet(tx, "u1")
		require.NoError(t, err)
		return env.ledger.Apply(tx, w, &models.Transaction{
			Amount:          money("1"),
			TransactionType: "refund",
		})
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLedger_TransactionsNewestFirst(t *testing.T) {
	env := newTestEnv(t, "100")
	ctx := context.Background()

	_, err := env.wallets.Credit(ctx, "u1", money("1"), PaymentMethodCard)
	require.NoError(t, err)
	_, err = env.wallets.Withdraw(ctx, "u1", money("2"))
	require.NoError(t, err)

	entries, err := env.ledger.Transactions(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.TransactionTypeWithdraw, entries[0].TransactionType)
	requireMoney(t, "99", entries[0].BalanceAfter)
}

func TestLedger_ReconcileAllFindsDrift(t *testing.T) {
	env := newTestEnv(t, "50")
	ctx := context.Background()

	for _, u := range []string{"a", "b", "c"} {
		_, err := env.wallets.EnsureWallet(ctx, u)
		require.NoError(t, err)
	}
	require.NoError(t, env.db.Model(&models.Wallet{}).Where("user_id = ?", "b").Update("balance", money("75")).Error)

	recs, err := env.ledger.ReconcileAll(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	var drifted []string
	for _, r := range recs {
		if !r.Balanced() {
			drifted = append(drifted, r.UserID)
		}
	}
	assert.Equal(t, []string{"b"}, drifted)
}

func TestLedger_ReconcileMissingWallet(t *testing.T) {
	env := newTestEnv(t, "50")
	_, err := env.ledger.Reconcile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReconcileAll_SeesWritesAfterPageRead(t *testing.T) {
	env := newTestEnv(t, "100")
	ctx := context.Background()
	_, err := env.wallets.EnsureWallet(ctx, "u1")
	require.NoError(t, err)

	var (
		fired     bool
		creditErr error
	)
	require.NoError(t, env.db.Callback().Query().After("gorm:query").Register("test:credit_after_wallet_page", func(d *gorm.DB) {
		if fired || d.Statement.Table != "wallets" {
			return
		}
		fired = true
		_, creditErr = env.wallets.Credit(ctx, "u1", money("5"), PaymentMethodCard)
	}))

	recs, err := env.ledger.ReconcileAll(ctx, 10)
	require.NoError(t, err)
	require.True(t, fired)
	require.NoError(t, creditErr)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Balanced())
	requireMoney(t, "105", recs[0].Balance)
	assert.Equal(t, 2, recs[0].Transactions)
}
