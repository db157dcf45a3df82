package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType is the direction/purpose of a ledger entry.
type TransactionType string

const (
	TransactionTypeAdd             TransactionType = "add"
	TransactionTypeWithdraw        TransactionType = "withdraw"
	TransactionTypeTournamentEntry TransactionType = "tournament_entry"
)

// IsCredit reports whether entries of this type increase the balance.
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeAdd
}

// Valid reports whether t is a known ledger type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeAdd, TransactionTypeWithdraw, TransactionTypeTournamentEntry:
		return true
	}
	return false
}

// ErrImmutableTransaction is returned by GORM hooks on any attempt to rewrite the ledger.
var ErrImmutableTransaction = errors.New("ledger transactions are append-only")

// Wallet is a user's stored balance. Balance is never negative.
type Wallet struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	UserID    string          `gorm:"uniqueIndex;size:64;not null" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Transaction is one immutable ledger entry. Amount is always positive;
// TransactionType carries the sign.
type Transaction struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	UserID          string          `gorm:"index;size:64;not null" json:"user_id"`
	WalletID        string          `gorm:"index;size:36;not null" json:"wallet_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	TransactionType TransactionType `gorm:"column:transaction_type;size:32;index;not null" json:"transaction_type"`
	Description     string          `gorm:"size:200" json:"description"`
	ReferenceID     *string         `gorm:"size:100;index" json:"reference_id,omitempty"`
	PaymentMethod   string          `gorm:"size:32" json:"payment_method,omitempty"`
	BalanceAfter    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"balance_after"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

// SignedAmount returns Amount with the sign implied by the type.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.TransactionType.IsCredit() {
		return t.Amount
	}
	return t.Amount.Neg()
}

func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableTransaction
}

func (t *Transaction) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableTransaction
}
