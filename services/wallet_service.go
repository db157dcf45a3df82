package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"unity-gaming/models"
	"unity-gaming/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment methods accepted by Credit.
const (
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
)

var paymentMethodLabels = map[string]string{
	PaymentMethodCard: "Credit/Debit Card",
	PaymentMethodUPI:  "UPI",
}

// WalletService applies balance changes through the ledger. Each public
// method is its own database transaction; the *Tx variants join the caller's.
type WalletService struct {
	DB              *gorm.DB
	Ledger          *LedgerStore
	StartingBalance decimal.Decimal
}

func NewWalletService(db *gorm.DB, ledger *LedgerStore, startingBalance decimal.Decimal) *WalletService {
	return &WalletService{DB: db, Ledger: ledger, StartingBalance: startingBalance}
}

// ParseAmount accepts a JSON number or numeric string and validates it as a
// money amount: strictly positive, at most two decimal places.
func ParseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Zero, ErrInvalidAmount
		}
		s = strings.TrimSpace(str)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ValidateAmount rejects zero, negative and sub-cent amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// EnsureWallet returns userID's wallet, creating it with the starting balance
// on first access. Concurrent first calls create exactly one wallet.
func (s *WalletService) EnsureWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := s.EnsureWalletTx(tx, userID)
		if err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// EnsureWalletTx is EnsureWallet inside an existing transaction.
func (s *WalletService) EnsureWalletTx(tx *gorm.DB, userID string) (*models.Wallet, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required: %w", ErrInvalidInput)
	}
	created, err := s.Ledger.CreateWalletIfMissing(tx, userID, s.StartingBalance)
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("[WALLET] 👛 Created wallet for user %s with starting balance %s", userID, s.StartingBalance.StringFixed(2))
	}

	var wallet models.Wallet
	if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, notFound(err)
	}
	return &wallet, nil
}

// Balance returns the current balance, creating the wallet if needed.
func (s *WalletService) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	wallet, err := s.EnsureWallet(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// Credit adds amount paid through paymentMethod ("card" or "upi") and
// returns the ledger entry; entry.BalanceAfter is the new balance.
func (s *WalletService) Credit(ctx context.Context, userID string, amount decimal.Decimal, paymentMethod string) (*models.Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	label, ok := paymentMethodLabels[paymentMethod]
	if !ok {
		return nil, fmt.Errorf("payment_method must be card or upi: %w", ErrInvalidInput)
	}
	entry := &models.Transaction{
		Amount:          amount,
		TransactionType: models.TransactionTypeAdd,
		Description:     fmt.Sprintf("Added %s to wallet via %s", utils.FormatUSD(amount), label),
		PaymentMethod:   paymentMethod,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.applyTx(tx, userID, entry)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[WALLET] ➕ User %s added %s via %s, balance %s", userID, amount.StringFixed(2), paymentMethod, entry.BalanceAfter.StringFixed(2))
	return entry, nil
}

// DebitRequest describes one outgoing ledger entry.
type DebitRequest struct {
	UserID      string
	Amount      decimal.Decimal
	Type        models.TransactionType
	Description string
	ReferenceID *string
}

// Debit removes req.Amount. Fails with ErrInsufficientFunds and no change
// when the balance cannot cover it.
func (s *WalletService) Debit(ctx context.Context, req DebitRequest) (*models.Transaction, error) {
	var entry *models.Transaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := s.DebitTx(tx, req)
		entry = e
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[WALLET] ➖ User %s debited %s (%s), balance %s", req.UserID, req.Amount.StringFixed(2), req.Type, entry.BalanceAfter.StringFixed(2))
	return entry, nil
}

// Withdraw is a Debit of type withdraw.
func (s *WalletService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (*models.Transaction, error) {
	return s.Debit(ctx, DebitRequest{
		UserID:      userID,
		Amount:      amount,
		Type:        models.TransactionTypeWithdraw,
		Description: fmt.Sprintf("Withdrew %s from wallet", utils.FormatUSD(amount)),
	})
}

// DebitTx is Debit inside an existing transaction.
func (s *WalletService) DebitTx(tx *gorm.DB, req DebitRequest) (*models.Transaction, error) {
	if req.Type.IsCredit() || !req.Type.Valid() {
		return nil, fmt.Errorf("debit with type %q: %w", req.Type, ErrInvalidInput)
	}
	entry := &models.Transaction{
		Amount:          req.Amount,
		TransactionType: req.Type,
		Description:     req.Description,
		ReferenceID:     req.ReferenceID,
	}
	if err := s.applyTx(tx, req.UserID, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditTx credits amount inside tx. Used for tournament earnings.
func (s *WalletService) CreditTx(tx *gorm.DB, userID string, amount decimal.Decimal, description string, referenceID *string) (*models.Transaction, error) {
	entry := &models.Transaction{
		Amount:          amount,
		TransactionType: models.TransactionTypeAdd,
		Description:     description,
		ReferenceID:     referenceID,
	}
	if err := s.applyTx(tx, userID, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Transactions lists the newest ledger entries for userID.
func (s *WalletService) Transactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	return s.Ledger.Transactions(ctx, userID, limit)
}

func (s *WalletService) applyTx(tx *gorm.DB, userID string, entry *models.Transaction) error {
	if err := ValidateAmount(entry.Amount); err != nil {
		return err
	}
	if _, err := s.EnsureWalletTx(tx, userID); err != nil {
		return err
	}
	wallet, err := s.Ledger.LockWallet(tx, userID)
	if err != nil {
		return err
	}
	if !entry.TransactionType.IsCredit() && wallet.Balance.LessThan(entry.Amount) {
		log.Printf("[WALLET] ⚠️ Insufficient funds for user %s: balance %s, requested %s", userID, wallet.Balance.StringFixed(2), entry.Amount.StringFixed(2))
		return ErrInsufficientFunds
	}
	return s.Ledger.Apply(tx, wallet, entry)
}
