package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// OnlineWindow is how recently a user must have been active to count as online.
const OnlineWindow = 5 * time.Minute

// User is the local profile row. Identity itself is owned by the auth service;
// ID is the user_id carried in verified tokens.
type User struct {
	ID             string     `gorm:"primaryKey;size:64" json:"id"`
	Username       string     `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email          string     `gorm:"size:120" json:"email,omitempty"`
	Avatar         string     `gorm:"size:200" json:"avatar"`
	Bio            string     `gorm:"type:text" json:"bio,omitempty"`
	Location       string     `gorm:"size:100" json:"location,omitempty"`
	SkillLevel     string     `gorm:"size:50;index" json:"skill_level,omitempty"`
	PreferredGames string     `gorm:"size:500" json:"preferred_games,omitempty"` // comma separated
	LastActive     *time.Time `json:"last_active,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times with soft delete.
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Games splits PreferredGames into trimmed, non-empty names.
func (u *User) Games() []string {
	var out []string
	for _, g := range strings.Split(u.PreferredGames, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// PrimaryGame is the first preferred game, or "Various".
func (u *User) PrimaryGame() string {
	if games := u.Games(); len(games) > 0 {
		return games[0]
	}
	return "Various"
}

// IsOnline reports whether lastActive falls inside OnlineWindow of now.
func IsOnline(lastActive *time.Time, now time.Time) bool {
	if lastActive == nil {
		return false
	}
	return !lastActive.Before(now.Add(-OnlineWindow))
}
