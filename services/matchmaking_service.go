package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"unity-gaming/models"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	anyGame        = "All Games"
	anySkill       = "All Levels"
	maxFindResults = 10
)

var skillTiers = map[string]int{
	"bronze": 1, "silver": 2, "gold": 3, "platinum": 4,
	"diamond": 5, "master": 6, "grandmaster": 7,
}

// CompatibilityScore rates how well two players fit for game, from 0 to 100.
// Shared preferred games and close skill tiers raise it.
func CompatibilityScore(a, b *models.User, game string) int {
	score := 50

	shared := 0
	bGames := map[string]bool{}
	for _, g := range b.Games() {
		bGames[strings.ToLower(g)] = true
	}
	for _, g := range a.Games() {
		if bGames[strings.ToLower(g)] {
			shared++
		}
	}
	if shared > 3 {
		shared = 3
	}
	score += shared * 10

	if game != "" && game != anyGame {
		g := strings.ToLower(game)
		aPlays := false
		for _, x := range a.Games() {
			if strings.ToLower(x) == g {
				aPlays = true
			}
		}
		if aPlays && bGames[g] {
			score += 10
		}
	}

	ta, okA := skillTiers[strings.ToLower(a.SkillLevel)]
	tb, okB := skillTiers[strings.ToLower(b.SkillLevel)]
	if okA && okB {
		diff := ta - tb
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 0:
			score += 10
		case 1:
			score += 5
		default:
			score -= 5 * (diff - 1)
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// MatchCandidate is one suggested opponent.
type MatchCandidate struct {
	UserSummary
	Game               string  `json:"game"`
	Rank               string  `json:"rank"`
	PreferredRole      string  `json:"preferred_role"`
	WinRate            float64 `json:"win_rate"`
	HoursPlayed        int     `json:"hours_played"`
	LastActive         string  `json:"last_active"`
	MatchCompatibility int     `json:"match_compatibility"`
}

// MatchFilter narrows Find.
type MatchFilter struct {
	Game       string `json:"game"`
	SkillLevel string `json:"skillLevel"`
}

// MatchmakingService suggests opponents and records pairings.
type MatchmakingService struct {
	DB  *gorm.DB
	Now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMatchmakingService uses rng for quick-match picks; nil seeds from the runtime.
func NewMatchmakingService(db *gorm.DB, rng *rand.Rand) *MatchmakingService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &MatchmakingService{DB: db, Now: time.Now, rng: rng}
}

// Find lists up to ten other players matching filter, best fit first.
func (s *MatchmakingService) Find(ctx context.Context, userID string, filter MatchFilter) ([]MatchCandidate, error) {
	me, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx).Where("id <> ?", userID)
	if filter.Game != "" && filter.Game != anyGame {
		db = db.Where("LOWER(preferred_games) LIKE ?", "%"+strings.ToLower(filter.Game)+"%")
	}
	if filter.SkillLevel != "" && filter.SkillLevel != anySkill {
		db = db.Where("skill_level = ?", filter.SkillLevel)
	}
	var users []models.User
	if err := db.Order("last_active DESC").Limit(maxFindResults).Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]MatchCandidate, 0, len(users))
	for i := range users {
		game := filter.Game
		if game == "" || game == anyGame {
			game = users[i].PrimaryGame()
		}
		c, err := s.candidate(ctx, me, &users[i], game)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sortCandidates(out)
	return out, nil
}

// QuickMatch pairs userID with a random online player and records the match.
func (s *MatchmakingService) QuickMatch(ctx context.Context, userID string) (*MatchCandidate, error) {
	me, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	var online []models.User
	if err := s.DB.WithContext(ctx).
		Where("id <> ? AND last_active >= ?", userID, now.Add(-models.OnlineWindow)).
		Order("id").
		Find(&online).Error; err != nil {
		return nil, err
	}
	if len(online) == 0 {
		return nil, fmt.Errorf("no players available for quick match: %w", ErrNotFound)
	}

	s.mu.Lock()
	pick := &online[s.rng.IntN(len(online))]
	s.mu.Unlock()

	game := pick.PrimaryGame()
	c, err := s.candidate(ctx, me, pick, game)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, userID, pick.ID, game, models.MatchTypeQuick, c.MatchCompatibility, nil); err != nil {
		return nil, err
	}
	return &c, nil
}

// RecordSearchMatch stores a pairing the user chose from Find results.
func (s *MatchmakingService) RecordSearchMatch(ctx context.Context, userID, otherID string, filter MatchFilter) (*models.MatchHistory, error) {
	me, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := s.loadUser(ctx, otherID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}
	game := filter.Game
	if game == "" || game == anyGame {
		game = other.PrimaryGame()
	}
	m := &models.MatchHistory{
		ID:                 uuid.NewString(),
		User1ID:            userID,
		User2ID:            otherID,
		Game:               game,
		MatchType:          models.MatchTypeSearch,
		CompatibilityScore: CompatibilityScore(me, other, game),
		Status:             "active",
		Filters:            datatypes.JSON(raw),
	}
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// HistoryEntry is one past match from the caller's point of view.
type HistoryEntry struct {
	ID            string      `json:"id"`
	Player        UserSummary `json:"player"`
	Game          string      `json:"game"`
	MatchType     string      `json:"match_type"`
	Status        string      `json:"status"`
	Compatibility int         `json:"compatibility"`
	MatchedAt     time.Time   `json:"matched_at"`
}

// History lists userID's matches, newest first, with the other player.
func (s *MatchmakingService) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	var matches []models.MatchHistory
	db := s.DB.WithContext(ctx)
	if err := db.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").Limit(100).Find(&matches).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, otherPlayer(m, userID))
	}
	var users []models.User
	if len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	now := s.Now()
	title := cases.Title(language.English)
	out := make([]HistoryEntry, 0, len(matches))
	for _, m := range matches {
		otherID := otherPlayer(m, userID)
		u, ok := byID[otherID]
		if !ok {
			u = &models.User{ID: otherID, Username: "Unknown player"}
		}
		out = append(out, HistoryEntry{
			ID:            m.ID,
			Player:        Summarize(u, now),
			Game:          m.Game,
			MatchType:     m.MatchType,
			Status:        title.String(m.Status),
			Compatibility: m.CompatibilityScore,
			MatchedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

// ProfileInput updates the caller's matchmaking card for one game.
type ProfileInput struct {
	Game          string  `json:"game"`
	Rank          string  `json:"rank"`
	PreferredRole string  `json:"preferred_role"`
	WinRate       float64 `json:"win_rate"`
	HoursPlayed   int     `json:"hours_played"`
	IsActive      *bool   `json:"is_active"`
}

// UpsertProfile creates or replaces userID's card for in.Game.
func (s *MatchmakingService) UpsertProfile(ctx context.Context, userID string, in ProfileInput) (*models.MatchmakingProfile, error) {
	game := strings.TrimSpace(in.Game)
	switch {
	case game == "":
		return nil, fmt.Errorf("game is required: %w", ErrInvalidInput)
	case in.WinRate < 0 || in.WinRate > 100:
		return nil, fmt.Errorf("win_rate must be between 0 and 100: %w", ErrInvalidInput)
	case in.HoursPlayed < 0:
		return nil, fmt.Errorf("hours_played cannot be negative: %w", ErrInvalidInput)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	p := &models.MatchmakingProfile{
		ID:            uuid.NewString(),
		UserID:        userID,
		Game:          game,
		Rank:          in.Rank,
		PreferredRole: in.PreferredRole,
		WinRate:       in.WinRate,
		HoursPlayed:   in.HoursPlayed,
		IsActive:      active,
	}
	db := s.DB.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game"}},
		DoUpdates: clause.AssignmentColumns([]string{"rank", "preferred_role", "win_rate", "hours_played", "is_active", "updated_at"}),
	}).Create(p).Error; err != nil {
		return nil, err
	}
	var out models.MatchmakingProfile
	if err := db.Where("user_id = ? AND game = ?", userID, game).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MatchmakingService) candidate(ctx context.Context, me, other *models.User, game string) (MatchCandidate, error) {
	c := MatchCandidate{
		UserSummary:        Summarize(other, s.Now()),
		Game:               game,
		Rank:               orDefault(other.SkillLevel, "Unranked"),
		PreferredRole:      "Flex",
		LastActive:         "Unknown",
		MatchCompatibility: CompatibilityScore(me, other, game),
	}
	if other.LastActive != nil {
		c.LastActive = other.LastActive.UTC().Format("2006-01-02 15:04")
	}
	var p models.MatchmakingProfile
	err := s.DB.WithContext(ctx).Where("user_id = ? AND LOWER(game) = ?", other.ID, strings.ToLower(game)).Limit(1).Find(&p).Error
	if err != nil {
		return c, err
	}
	if p.ID != "" {
		if p.Rank != "" {
			c.Rank = p.Rank
		}
		if p.PreferredRole != "" {
			c.PreferredRole = p.PreferredRole
		}
		c.WinRate = p.WinRate
		c.HoursPlayed = p.HoursPlayed
	}
	return c, nil
}

func (s *MatchmakingService) record(ctx context.Context, a, b, game, kind string, score int, filters datatypes.JSON) error {
	return s.DB.WithContext(ctx).Create(&models.MatchHistory{
		ID:                 uuid.NewString(),
		User1ID:            a,
		User2ID:            b,
		Game:               game,
		MatchType:          kind,
		CompatibilityScore: score,
		Status:             "active",
		Filters:            filters,
	}).Error
}

func (s *MatchmakingService) loadUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func sortCandidates(cs []MatchCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].MatchCompatibility > cs[j].MatchCompatibility
	})
}

func otherPlayer(m models.MatchHistory, userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
