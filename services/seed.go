package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"unity-gaming/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sampleTournament struct {
	name, game, prize, organizer, format, thumbnail string
	fee                                             string
	max, current                                    int
	startInDays, days                               int
	closed                                          bool
}

var sampleTournaments = []sampleTournament{
	{"Winter Championship 2024", "League of Legends", "$50,000", "ESL Gaming", "Single Elimination", "/news_feed/leagueoflegends.jpg", "10", 128, 128, 5, 2, true},
	{"FPS Masters Cup", "Call of Duty", "$25,000", "GameBattles", "Double Elimination", "/news_feed/callofduty.jpg", "5", 128, 64, 10, 2, false},
	{"Valorant Pro Series", "Valorant", "$75,000", "Riot Games", "Swiss System", "/news_feed/fortnite.webp", "15", 64, 32, 17, 2, false},
	{"Counter-Strike Global Championship", "Counter-Strike", "$100,000", "ESL Gaming", "Round Robin", "/news_feed/ubgaming.webp", "20", 64, 28, 26, 2, false},
	{"Fortnite Battle Royale Invitational", "Fortnite", "$60,000", "Epic Games", "Battle Royale", "/news_feed/fortnite.webp", "12", 100, 45, 31, 2, false},
	{"Apex Legends Showdown", "Apex Legends", "$40,000", "EA Games", "Squad Elimination", "/news_feed/callofduty.jpg", "8", 80, 52, 36, 2, false},
	{"Rocket League Championship", "Rocket League", "$35,000", "Psyonix", "3v3 Tournament", "/news_feed/leagueoflegends.jpg", "7", 64, 38, 41, 2, false},
	{"Dota 2 International Qualifiers", "Dota 2", "$150,000", "Valve Corporation", "Best of 3", "/news_feed/leagueoflegends.jpg", "25", 32, 18, 46, 4, false},
	{"Overwatch League Playoffs", "Overwatch", "$80,000", "Blizzard Entertainment", "6v6 Competition", "/news_feed/callofduty.jpg", "18", 48, 25, 55, 2, false},
	{"PUBG Mobile Championship", "PUBG Mobile", "$45,000", "Krafton", "Squad Battle Royale", "/news_feed/fortnite.webp", "9", 100, 67, 60, 2, false},
}

// SeedSampleTournaments fills an empty tournaments table with the sample
// lineup, scheduled relative to now. It is a no-op when any tournament exists
// or when a concurrent caller seeds first.
func (s *TournamentService) SeedSampleTournaments(ctx context.Context, now time.Time) (int, error) {
	created := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Tournament{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		day := now.UTC().Truncate(24 * time.Hour)
		for _, st := range sampleTournaments {
			start := day.AddDate(0, 0, st.startInDays)
			status := models.TournamentStatusOpen
			if st.closed {
				status = models.TournamentStatusClosed
			}
			t := &models.Tournament{
				ID:                  uuid.NewString(),
				Name:                st.name,
				Game:                st.game,
				PrizePool:           st.prize,
				EntryFee:            decimal.RequireFromString(st.fee),
				MaxParticipants:     st.max,
				CurrentParticipants: st.current,
				Status:              status,
				StartDate:           start,
				EndDate:             start.AddDate(0, 0, st.days),
				Organizer:           st.organizer,
				Format:              st.format,
				Thumbnail:           st.thumbnail,
			}
			if err := s.createTx(tx, t); err != nil {
				return fmt.Errorf("seed %s: %w", st.name, err)
			}
			created++
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Println("[REGISTRY] Sample tournaments already seeded by another request")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if created > 0 {
		log.Printf("[REGISTRY] 🌱 Seeded %d sample tournaments", created)
	}
	return created, nil
}

var sampleUsers = []models.User{
	{ID: "sample-proshooter99", Username: "ProShooter99", Email: "proshooter@example.com", SkillLevel: "Diamond", PreferredGames: "Call of Duty,Valorant", Location: "Los Angeles, CA"},
	{ID: "sample-strategymaster", Username: "StrategyMaster", Email: "strategy@example.com", SkillLevel: "Platinum", PreferredGames: "League of Legends,Dota 2", Location: "New York, NY"},
	{ID: "sample-headshotking", Username: "HeadshotKing", Email: "headshot@example.com", SkillLevel: "Diamond", PreferredGames: "Counter-Strike,Valorant", Location: "Chicago, IL"},
}

var sampleVideos = []models.Video{
	{Title: "Spectating the Pros - Fly Santorin, Powerofsevil - New Cops vs PoE", Description: "Watch professional players in action", Thumbnail: "/news_feed/tomtran.jpg", Game: "Call of Duty", Duration: "5:23", Views: 3200, Likes: 245},
	{Title: "Epic Clutch Moments - Ranked Match Highlights", Description: "Best plays from ranked matches", Thumbnail: "/news_feed/ubgaming.webp", Game: "Call of Duty", Duration: "8:15", Views: 2800, Likes: 189},
	{Title: "New Sub Emotes And Badges! Lets Goooo", Description: "Check out the new features", Thumbnail: "/news_feed/fortnite.webp", Game: "Call of Duty", Duration: "3:45", Views: 4500, Likes: 312},
}

// SeedSampleUsers creates the demo players, gives each a wallet, and adds
// demo videos when the videos table is empty. Safe to run on every start.
func SeedSampleUsers(ctx context.Context, db *gorm.DB, wallets *WalletService, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range sampleUsers {
			u := sampleUsers[i]
			u.LastActive = &now
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", u.Username, err)
			}
			if _, err := wallets.EnsureWalletTx(tx, u.ID); err != nil {
				return err
			}
		}

		var n int64
		if err := tx.Model(&models.Video{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		owners := []string{sampleUsers[0].ID, sampleUsers[0].ID, sampleUsers[1].ID}
		for i := range sampleVideos {
			v := sampleVideos[i]
			v.ID = uuid.NewString()
			v.UserID = owners[i]
			v.ObjectKey = fmt.Sprintf("videos/sample%d.mp4", i+1)
			v.Status = models.VideoStatusPublished
			v.Visibility = models.VideoVisibilityPublic
			if err := tx.Create(&v).Error; err != nil {
				return fmt.Errorf("seed video %q: %w", v.Title, err)
			}
		}
		log.Printf("[SEED] 🌱 Seeded %d sample videos", len(sampleVideos))
		return nil
	})
}
