package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"unity-gaming/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TournamentService is the registry: tournament lifecycle, capacity and
// registration rows. Methods taking a *gorm.DB run inside the caller's
// transaction.
type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

const defaultTournamentLength = 48 * time.Hour

// TournamentFilter narrows List. Empty fields match everything.
type TournamentFilter struct {
	Status models.TournamentStatus
	Game   string
}

// CreateTournamentInput is the admin payload for a new tournament.
type CreateTournamentInput struct {
	Name            string
	Game            string
	PrizePool       string
	EntryFee        decimal.Decimal
	MaxParticipants int
	StartDate       time.Time
	EndDate         time.Time
	Organizer       string
	Format          string
	Thumbnail       string
	Details         datatypes.JSON
}

func (in CreateTournamentInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("name is required: %w", ErrInvalidInput)
	case strings.TrimSpace(in.Game) == "":
		return fmt.Errorf("game is required: %w", ErrInvalidInput)
	case in.MaxParticipants <= 0:
		return fmt.Errorf("max_participants must be positive: %w", ErrInvalidInput)
	case in.EntryFee.IsNegative() || !in.EntryFee.Equal(in.EntryFee.Round(2)):
		return fmt.Errorf("entry_fee must be a non-negative amount: %w", ErrInvalidInput)
	case in.StartDate.IsZero():
		return fmt.Errorf("start_date is required: %w", ErrInvalidInput)
	case !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate):
		return fmt.Errorf("end_date is before start_date: %w", ErrInvalidInput)
	}
	return nil
}

// List returns tournaments, soonest start first.
func (s *TournamentService) List(ctx context.Context, filter TournamentFilter) ([]models.Tournament, error) {
	db := s.DB.WithContext(ctx).Model(&models.Tournament{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Game != "" {
		db = db.Where("LOWER(game) = ?", strings.ToLower(filter.Game))
	}
	var tournaments []models.Tournament
	if err := db.Order("start_date ASC").Order("created_at DESC").Find(&tournaments).Error; err != nil {
		return nil, err
	}
	return tournaments, nil
}

// Count returns the number of stored tournaments.
func (s *TournamentService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Tournament{}).Count(&n).Error
	return n, err
}

// GetTournament loads one tournament by ID.
func (s *TournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	var t models.Tournament
	if err := s.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// LockTournament loads the tournament and holds its row lock until tx ends.
func (s *TournamentService) LockTournament(tx *gorm.DB, id string) (*models.Tournament, error) {
	var t models.Tournament
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// CheckOpen returns the reason t cannot take a registration, or nil.
func CheckOpen(t *models.Tournament) error {
	if t.Status != models.TournamentStatusOpen {
		return ErrRegistrationClosed
	}
	if t.IsFull() {
		return ErrTournamentFull
	}
	return nil
}

// HasExistingRegistration reports whether userID already holds a seat.
func (s *TournamentService) HasExistingRegistration(tx *gorm.DB, userID, tournamentID string) (bool, error) {
	var n int64
	err := tx.Model(&models.TournamentRegistration{}).
		Where("user_id = ? AND tournament_id = ?", userID, tournamentID).
		Count(&n).Error
	return n > 0, err
}

// CreateRegistration inserts reg. A unique-index violation is ErrAlreadyRegistered.
func (s *TournamentService) CreateRegistration(tx *gorm.DB, reg *models.TournamentRegistration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.Status == "" {
		reg.Status = models.RegistrationStatusRegistered
	}
	if err := tx.Create(reg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// IncrementParticipant takes one seat. The count is re-checked under the row
// lock; registration closes in the same update when the last seat goes.
func (s *TournamentService) IncrementParticipant(tx *gorm.DB, tournamentID string) (*models.Tournament, error) {
	t, err := s.LockTournament(tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.IsFull() {
		return nil, ErrTournamentFull
	}

	t.CurrentParticipants++
	updates := map[string]interface{}{
		"current_participants": t.CurrentParticipants,
		"updated_at":           time.Now(),
	}
	if t.CurrentParticipants == t.MaxParticipants && t.Status == models.TournamentStatusOpen {
		t.Status = models.TournamentStatusClosed
		updates["status"] = t.Status
	}

	res := tx.Model(&models.Tournament{}).
		Where("id = ? AND current_participants < max_participants", t.ID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("increment participants: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrTournamentFull
	}
	if t.Status == models.TournamentStatusClosed {
		log.Printf("[REGISTRY] 🔒 Tournament %s is full (%d/%d), registration closed", t.Name, t.CurrentParticipants, t.MaxParticipants)
	}
	return t, nil
}

// ListUserRegistrations returns userID's registrations with their
// tournaments, newest first.
func (s *TournamentService) ListUserRegistrations(ctx context.Context, userID string) ([]models.TournamentRegistration, error) {
	var regs []models.TournamentRegistration
	err := s.DB.WithContext(ctx).
		Preload("Tournament").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&regs).Error
	return regs, err
}

// Create stores a new open tournament with a unique slug.
func (s *TournamentService) Create(ctx context.Context, in CreateTournamentInput) (*models.Tournament, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.EndDate.IsZero() {
		in.EndDate = in.StartDate.Add(defaultTournamentLength)
	}
	t := &models.Tournament{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.Name),
		Game:            strings.TrimSpace(in.Game),
		PrizePool:       in.PrizePool,
		EntryFee:        in.EntryFee,
		MaxParticipants: in.MaxParticipants,
		Status:          models.TournamentStatusOpen,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Organizer:       in.Organizer,
		Format:          in.Format,
		Thumbnail:       in.Thumbnail,
		Details:         in.Details,
	}
	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.createTx(tx, t)
	}); err != nil {
		return nil, err
	}
	log.Printf("[REGISTRY] 🏆 Created tournament %s (%s), %d seats, fee %s", t.Name, t.ID, t.MaxParticipants, t.EntryFee.StringFixed(2))
	return t, nil
}

func (s *TournamentService) createTx(tx *gorm.DB, t *models.Tournament) error {
	if t.Thumbnail == "" {
		t.Thumbnail = "/placeholder.svg"
	}
	if t.Status == models.TournamentStatusOpen && t.CurrentParticipants >= t.MaxParticipants {
		t.Status = models.TournamentStatusClosed
	}
	base := slug.Make(t.Name)
	t.Slug = base
	for i := 0; ; i++ {
		var n int64
		if err := tx.Model(&models.Tournament{}).Where("slug = ?", t.Slug).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if i >= 5 {
			return fmt.Errorf("slug %q: %w", base, ErrConflict)
		}
		t.Slug = fmt.Sprintf("%s-%s", base, uuid.NewString()[:6])
	}
	return tx.Create(t).Error
}

var allowedTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.TournamentStatusOpen:       {models.TournamentStatusInProgress},
	models.TournamentStatusClosed:     {models.TournamentStatusInProgress},
	models.TournamentStatusInProgress: {models.TournamentStatusCompleted},
}

// CanTransition reports whether a tournament may move from one status to
// another. Registration Closed is only reached by filling the last seat.
func CanTransition(from, to models.TournamentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus moves a tournament along its lifecycle.
func (s *TournamentService) UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) (*models.Tournament, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}
	var out *models.Tournament
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.LockTournament(tx, id)
		if err != nil {
			return err
		}
		if !CanTransition(t.Status, status) {
			return fmt.Errorf("%s to %s: %w", t.Status, status, ErrInvalidTransition)
		}
		if err := tx.Model(t).Update("status", status).Error; err != nil {
			return err
		}
		t.Status = status
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[REGISTRY] 🔁 Tournament %s moved to %s", out.Name, out.Status)
	return out, nil
}

// LockRegistration loads userID's registration in tournamentID under a row lock.
func (s *TournamentService) LockRegistration(tx *gorm.DB, tournamentID, userID string) (*models.TournamentRegistration, error) {
	var reg models.TournamentRegistration
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		First(&reg).Error; err != nil {
		return nil, notFound(err)
	}
	return &reg, nil
}

// AdvanceSchedule moves tournaments whose start date has passed to In
// Progress and those whose end date has passed to Completed.
func (s *TournamentService) AdvanceSchedule(ctx context.Context, now time.Time) (started, completed int64, err error) {
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Tournament{}).
			Where("status IN ? AND start_date <= ?", []models.TournamentStatus{models.TournamentStatusOpen, models.TournamentStatusClosed}, now).
			Updates(map[string]interface{}{"status": models.TournamentStatusInProgress, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		started = res.RowsAffected

		res = tx.Model(&models.Tournament{}).
			Where("status = ? AND end_date <= ?", models.TournamentStatusInProgress, now).
			Updates(map[string]interface{}{"status": models.TournamentStatusCompleted, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		completed = res.RowsAffected
		return nil
	})
	return started, completed, err
}
