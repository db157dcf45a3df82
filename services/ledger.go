package services

import (
	"context"
	"fmt"
	"time"

	"unity-gaming/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerStore owns the wallets and transactions tables. Every mutation takes
// the caller's *gorm.DB so it joins the caller's unit of work.
type LedgerStore struct {
	DB *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{DB: db}
}

// Reconciliation compares a wallet's stored balance with its ledger.
type Reconciliation struct {
	WalletID     string          `json:"wallet_id"`
	UserID       string          `json:"user_id"`
	Balance      decimal.Decimal `json:"balance"`
	LedgerTotal  decimal.Decimal `json:"ledger_total"`
	Transactions int             `json:"transactions"`
}

// Balanced reports whether the stored balance equals the ledger sum.
func (r Reconciliation) Balanced() bool {
	return r.Balance.Equal(r.LedgerTotal)
}

// CreateWalletIfMissing inserts a wallet for userID unless one exists. A
// non-zero opening balance is written to the ledger as an add entry.
func (l *LedgerStore) CreateWalletIfMissing(tx *gorm.DB, userID string, opening decimal.Decimal) (bool, error) {
	wallet := models.Wallet{
		ID:      uuid.NewString(),
		UserID:  userID,
		Balance: opening,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&wallet)
	if res.Error != nil {
		return false, fmt.Errorf("create wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if opening.IsPositive() {
		entry := models.Transaction{
			ID:              uuid.NewString(),
			UserID:          userID,
			WalletID:        wallet.ID,
			Amount:          opening,
			TransactionType: models.TransactionTypeAdd,
			Description:     "Starting balance",
			BalanceAfter:    opening,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return false, fmt.Errorf("record starting balance: %w", err)
		}
	}
	return true, nil
}

// LockWallet loads userID's wallet and holds its row lock until tx ends.
func (l *LedgerStore) LockWallet(tx *gorm.DB, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error; err != nil {
		return nil, notFound(err)
	}
	return &wallet, nil
}

// Apply moves wallet's balance by entry and appends entry to the ledger.
// The wallet must already be locked in tx. On success wallet.Balance and
// entry.BalanceAfter hold the new balance.
func (l *LedgerStore) Apply(tx *gorm.DB, wallet *models.Wallet, entry *models.Transaction) error {
	if !entry.TransactionType.Valid() {
		return fmt.Errorf("unknown transaction type %q: %w", entry.TransactionType, ErrInvalidInput)
	}
	if !entry.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	next := wallet.Balance.Add(entry.Amount)
	if !entry.TransactionType.IsCredit() {
		next = wallet.Balance.Sub(entry.Amount)
	}
	if next.IsNegative() {
		return ErrInsufficientFunds
	}

	now := time.Now()
	if err := tx.Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"balance":    next,
			"updated_at": now,
		}).Error; err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.UserID = wallet.UserID
	entry.WalletID = wallet.ID
	entry.BalanceAfter = next
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	wallet.Balance = next
	wallet.UpdatedAt = now
	return nil
}

// Transactions returns userID's most recent entries, newest first.
func (l *LedgerStore) Transactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.Transaction
	err := l.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Reconcile sums userID's ledger and compares it to the wallet balance.
func (l *LedgerStore) Reconcile(ctx context.Context, userID string) (Reconciliation, error) {
	var wallet models.Wallet
	if err := l.DB.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return Reconciliation{}, notFound(err)
	}
	return l.reconcileWallet(ctx, wallet.ID)
}

// ReconcileAll checks every wallet, in pages of batchSize.
func (l *LedgerStore) ReconcileAll(ctx context.Context, batchSize int) ([]Reconciliation, error) {
	if batchSize <= 0 {
		batchSize = 200
	}
	var out []Reconciliation
	var wallets []models.Wallet
	err := l.DB.WithContext(ctx).Select("id").Order("id").FindInBatches(&wallets, batchSize, func(tx *gorm.DB, batch int) error {
		for i := range wallets {
			rec, err := l.reconcileWallet(ctx, wallets[i].ID)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	}).Error
	return out, err
}

// reconcileWallet reads the balance and the ledger sum in one transaction,
// holding a share lock on the wallet row.
func (l *LedgerStore) reconcileWallet(ctx context.Context, walletID string) (Reconciliation, error) {
	var rec Reconciliation
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id = ?", walletID).
			First(&wallet).Error; err != nil {
			return notFound(err)
		}
		var entries []models.Transaction
		if err := tx.Where("wallet_id = ?", wallet.ID).Find(&entries).Error; err != nil {
			return err
		}
		total := decimal.Zero
		for i := range entries {
			total = total.Add(entries[i].SignedAmount())
		}
		rec = Reconciliation{
			WalletID:     wallet.ID,
			UserID:       wallet.UserID,
			Balance:      wallet.Balance,
			LedgerTotal:  total,
			Transactions: len(entries),
		}
		return nil
	})
	return rec, err
}
