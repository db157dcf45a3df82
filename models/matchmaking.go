package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	MatchTypeQuick  = "quick_match"
	MatchTypeSearch = "custom_search"
)

// MatchmakingProfile is a user's per-game matchmaking card.
type MatchmakingProfile struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	UserID        string    `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_mm_user_game,priority:1"`
	Game          string    `json:"game" gorm:"size:100;not null;uniqueIndex:idx_mm_user_game,priority:2"`
	Rank          string    `json:"rank" gorm:"size:50"`
	PreferredRole string    `json:"preferred_role" gorm:"size:50"`
	WinRate       float64   `json:"win_rate"`
	HoursPlayed   int       `json:"hours_played"`
	IsActive      bool      `json:"is_active" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// MatchHistory records a pairing produced by matchmaking.
type MatchHistory struct {
	ID                 string         `json:"id" gorm:"primaryKey;size:36"`
	User1ID            string         `json:"user1_id" gorm:"size:64;not null;index"`
	User2ID            string         `json:"user2_id" gorm:"size:64;not null;index"`
	Game               string         `json:"game" gorm:"size:100"`
	MatchType          string         `json:"match_type" gorm:"size:50"`
	CompatibilityScore int            `json:"compatibility_score"`
	Status             string         `json:"status" gorm:"size:50;not null;default:'active'"`
	Filters            datatypes.JSON `json:"filters,omitempty"`
	CreatedAt          time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
}
