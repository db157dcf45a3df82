package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TournamentStatus values are stored verbatim and shown to clients.
type TournamentStatus string

const (
	TournamentStatusOpen       TournamentStatus = "Open Registration"
	TournamentStatusClosed     TournamentStatus = "Registration Closed"
	TournamentStatusInProgress TournamentStatus = "In Progress"
	TournamentStatusCompleted  TournamentStatus = "Completed"
)

// Valid reports whether s is a known tournament status.
func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentStatusOpen, TournamentStatusClosed, TournamentStatusInProgress, TournamentStatusCompleted:
		return true
	}
	return false
}

// RegistrationStatus is the per-player state inside a tournament.
type RegistrationStatus string

const (
	RegistrationStatusRegistered   RegistrationStatus = "Registered"
	RegistrationStatusCompleted    RegistrationStatus = "Completed"
	RegistrationStatusDisqualified RegistrationStatus = "Disqualified"
)

// Tournament tracks lifecycle and capacity.
// CurrentParticipants <= MaxParticipants; Status flips to Registration Closed
// exactly when the two become equal.
type Tournament struct {
	ID                  string           `json:"id" gorm:"primaryKey;size:36"`
	Name                string           `json:"name" gorm:"size:200;not null"`
	Slug                string           `json:"slug" gorm:"size:220;uniqueIndex"`
	Game                string           `json:"game" gorm:"size:100;not null;index"`
	PrizePool           string           `json:"prize_pool" gorm:"size:50"`
	EntryFee            decimal.Decimal  `json:"entry_fee" gorm:"type:numeric(14,2);not null;default:0"`
	MaxParticipants     int              `json:"max_participants" gorm:"not null;default:128"`
	CurrentParticipants int              `json:"current_participants" gorm:"not null;default:0"`
	Status              TournamentStatus `json:"status" gorm:"size:32;not null;index"`
	StartDate           time.Time        `json:"start_date"`
	EndDate             time.Time        `json:"end_date"`
	Organizer           string           `json:"organizer" gorm:"size:100"`
	Format              string           `json:"format" gorm:"size:50"`
	Thumbnail           string           `json:"thumbnail" gorm:"size:200"`
	Details             datatypes.JSON   `json:"details,omitempty"`
	CreatedAt           time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsOpenForRegistration is true iff registration is open and a seat is left.
func (t *Tournament) IsOpenForRegistration() bool {
	return t.Status == TournamentStatusOpen && t.CurrentParticipants < t.MaxParticipants
}

// IsFull reports whether every seat is taken.
func (t *Tournament) IsFull() bool {
	return t.CurrentParticipants >= t.MaxParticipants
}

// TournamentRegistration links a user to a tournament. At most one per pair.
type TournamentRegistration struct {
	ID            string              `json:"id" gorm:"primaryKey;size:36"`
	UserID        string              `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_registration_user_tournament,priority:1"`
	TournamentID  string              `json:"tournament_id" gorm:"size:36;not null;index;uniqueIndex:idx_registration_user_tournament,priority:2"`
	TransactionID *string             `json:"transaction_id,omitempty" gorm:"size:36"` // nil only for free tournaments
	Status        RegistrationStatus  `json:"status" gorm:"size:32;not null;default:'Registered'"`
	Placement     *string             `json:"placement,omitempty" gorm:"size:50"`
	Earnings      decimal.NullDecimal `json:"earnings,omitempty" gorm:"type:numeric(14,2)"`
	CreatedAt     time.Time           `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time           `json:"updated_at" gorm:"autoUpdateTime"`

	Tournament *Tournament `json:"tournament,omitempty" gorm:"foreignKey:TournamentID"`
}
