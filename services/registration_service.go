package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"unity-gaming/models"
	"unity-gaming/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegistrationService moves money and seats together. It owns no tables;
// every call is a single database transaction over the wallet and registry.
type RegistrationService struct {
	DB          *gorm.DB
	Wallets     *WalletService
	Tournaments *TournamentService
}

func NewRegistrationService(db *gorm.DB, wallets *WalletService, tournaments *TournamentService) *RegistrationService {
	return &RegistrationService{DB: db, Wallets: wallets, Tournaments: tournaments}
}

// RegistrationResult is what a successful registration changed.
type RegistrationResult struct {
	Registration *models.TournamentRegistration
	Tournament   *models.Tournament
	Transaction  *models.Transaction // nil for free tournaments
	Balance      decimal.Decimal
	EntryFeePaid decimal.Decimal
}

// RegisterForTournament seats userID in tournamentID and charges the entry
// fee. Locks are taken tournament first, then wallet.
func (s *RegistrationService) RegisterForTournament(ctx context.Context, userID, tournamentID string) (*RegistrationResult, error) {
	if userID == "" || tournamentID == "" {
		return nil, fmt.Errorf("user and tournament are required: %w", ErrInvalidInput)
	}

	var result RegistrationResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.Tournaments.LockTournament(tx, tournamentID)
		if err != nil {
			return err
		}
		if err := CheckOpen(t); err != nil {
			return err
		}

		exists, err := s.Tournaments.HasExistingRegistration(tx, userID, tournamentID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyRegistered
		}

		wallet, err := s.Wallets.EnsureWalletTx(tx, userID)
		if err != nil {
			return err
		}
		if wallet.Balance.LessThan(t.EntryFee) {
			return ErrInsufficientFunds
		}

		reg := &models.TournamentRegistration{
			UserID:       userID,
			TournamentID: t.ID,
			Status:       models.RegistrationStatusRegistered,
		}
		result.Balance = wallet.Balance
		if t.EntryFee.IsPositive() {
			ref := t.ID
			entry, err := s.Wallets.DebitTx(tx, DebitRequest{
				UserID:      userID,
				Amount:      t.EntryFee,
				Type:        models.TransactionTypeTournamentEntry,
				Description: "Entry fee for " + t.Name,
				ReferenceID: &ref,
			})
			if err != nil {
				return err
			}
			reg.TransactionID = &entry.ID
			result.Transaction = entry
			result.Balance = entry.BalanceAfter
		}

		if err := s.Tournaments.CreateRegistration(tx, reg); err != nil {
			return err
		}

		updated, err := s.Tournaments.IncrementParticipant(tx, t.ID)
		if err != nil {
			return err
		}

		result.Registration = reg
		result.Tournament = updated
		result.EntryFeePaid = t.EntryFee
		return nil
	})
	if err != nil {
		log.Printf("[REGISTER] ❌ User %s could not register for %s: %v", userID, tournamentID, err)
		return nil, err
	}

	log.Printf("[REGISTER] ✅ User %s registered for %s (%d/%d), paid %s, balance %s",
		userID, result.Tournament.Name, result.Tournament.CurrentParticipants, result.Tournament.MaxParticipants,
		result.EntryFeePaid.StringFixed(2), result.Balance.StringFixed(2))
	return &result, nil
}

// ResultInput is an admin-reported outcome for one player.
type ResultInput struct {
	UserID    string
	Placement string
	Earnings  decimal.Decimal
	Status    models.RegistrationStatus
}

// RecordResult stores a player's placement and credits any earnings to
// their wallet in the same transaction.
func (s *RegistrationService) RecordResult(ctx context.Context, tournamentID string, in ResultInput) (*models.TournamentRegistration, error) {
	if in.Status == "" {
		in.Status = models.RegistrationStatusCompleted
	}
	if in.Status != models.RegistrationStatusCompleted && in.Status != models.RegistrationStatusDisqualified {
		return nil, fmt.Errorf("result status must be Completed or Disqualified: %w", ErrInvalidInput)
	}
	if in.Earnings.IsNegative() || !in.Earnings.Equal(in.Earnings.Round(2)) {
		return nil, ErrInvalidAmount
	}
	if in.Status == models.RegistrationStatusDisqualified && in.Earnings.IsPositive() {
		return nil, fmt.Errorf("disqualified players cannot earn: %w", ErrInvalidInput)
	}

	var out *models.TournamentRegistration
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.Tournaments.LockTournament(tx, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentStatusInProgress && t.Status != models.TournamentStatusCompleted {
			return fmt.Errorf("results need a started tournament, got %s: %w", t.Status, ErrInvalidTransition)
		}

		reg, err := s.Tournaments.LockRegistration(tx, tournamentID, in.UserID)
		if err != nil {
			return err
		}
		if reg.Status != models.RegistrationStatusRegistered {
			return fmt.Errorf("result already recorded: %w", ErrConflict)
		}

		updates := map[string]interface{}{"status": in.Status}
		if p := strings.TrimSpace(in.Placement); p != "" {
			reg.Placement = &p
			updates["placement"] = p
		}
		if in.Earnings.IsPositive() {
			ref := t.ID
			if _, err := s.Wallets.CreditTx(tx, in.UserID, in.Earnings,
				fmt.Sprintf("Winnings from %s: %s", t.Name, utils.FormatUSD(in.Earnings)), &ref); err != nil {
				return err
			}
			reg.Earnings = decimal.NewNullDecimal(in.Earnings)
			updates["earnings"] = in.Earnings
		}
		if err := tx.Model(reg).Updates(updates).Error; err != nil {
			return err
		}
		reg.Status = in.Status
		reg.Tournament = t
		out = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[REGISTER] 🏁 Recorded %s for user %s in %s", out.Status, in.UserID, tournamentID)
	return out, nil
}
