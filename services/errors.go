package services

import (
	"errors"

	"gorm.io/gorm"
)

// Domain failures surfaced to callers. Each has its own user-facing message.
var (
	ErrInvalidAmount      = errors.New("invalid amount: must be a positive number with at most two decimal places")
	ErrInsufficientFunds  = errors.New("insufficient balance in wallet")
	ErrNotFound           = errors.New("not found")
	ErrRegistrationClosed = errors.New("registration is closed for this tournament")
	ErrTournamentFull     = errors.New("tournament is full")
	ErrAlreadyRegistered  = errors.New("already registered for this tournament")

	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("already exists")
)

// notFound maps gorm's record-not-found to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
