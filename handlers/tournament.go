package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"unity-gaming/middleware"
	"unity-gaming/models"
	"unity-gaming/services"
	"unity-gaming/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TournamentHandler struct {
	Tournaments   *services.TournamentService
	Registrations *services.RegistrationService
	// SeedOnEmpty fills an empty table with the sample lineup on first list.
	SeedOnEmpty bool
}

func SetupTournamentRoutes(r fiber.Router, h *TournamentHandler) {
	t := r.Group("/tournaments")
	t.Get("/", h.ListTournaments)
	t.Get("/my-tournaments", h.MyTournaments)
	t.Get("/:id", h.GetTournament)
	t.Post("/:id/register", h.Register)

	admin := middleware.RequireRole("admin")
	t.Post("/", admin, h.CreateTournament)
	t.Patch("/:id/status", admin, h.UpdateStatus)
	t.Post("/:id/results", admin, h.RecordResult)
}

func tournamentJSON(t *models.Tournament) fiber.Map {
	thumb := t.Thumbnail
	if thumb == "" {
		thumb = "/placeholder.svg"
	}
	return fiber.Map{
		"id":                   t.ID,
		"name":                 t.Name,
		"slug":                 t.Slug,
		"game":                 t.Game,
		"prizePool":            t.PrizePool,
		"entryFee":             t.EntryFee.InexactFloat64(),
		"participants":         utils.FormatCount(int64(t.CurrentParticipants)) + "/" + utils.FormatCount(int64(t.MaxParticipants)),
		"current_participants": t.CurrentParticipants,
		"max_participants":     t.MaxParticipants,
		"startDate":            dateOnly(t.StartDate),
		"endDate":              dateOnly(t.EndDate),
		"status":               t.Status,
		"isOpen":               t.IsOpenForRegistration(),
		"organizer":            t.Organizer,
		"format":               t.Format,
		"thumbnail":            thumb,
		"details":              t.Details,
	}
}

func dateOnly(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.DateOnly)
}

func (h *TournamentHandler) ListTournaments(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if h.SeedOnEmpty {
		if _, err := h.Tournaments.SeedSampleTournaments(ctx, time.Now()); err != nil {
			return respondError(c, err)
		}
	}
	list, err := h.Tournaments.List(ctx, services.TournamentFilter{
		Status: models.TournamentStatus(c.Query("status")),
		Game:   c.Query("game"),
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]fiber.Map, 0, len(list))
	for i := range list {
		out = append(out, tournamentJSON(&list[i]))
	}
	return c.JSON(fiber.Map{"tournaments": out})
}

func (h *TournamentHandler) GetTournament(c *fiber.Ctx) error {
	t, err := h.Tournaments.GetTournament(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tournamentJSON(t))
}

func (h *TournamentHandler) Register(c *fiber.Ctx) error {
	res, err := h.Registrations.RegisterForTournament(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	t := res.Tournament
	return c.JSON(fiber.Map{
		"message":        "Successfully registered for tournament",
		"balance":        res.Balance.InexactFloat64(),
		"entry_fee_paid": res.EntryFeePaid.InexactFloat64(),
		"registration": fiber.Map{
			"id":             res.Registration.ID,
			"tournament_id":  t.ID,
			"status":         res.Registration.Status,
			"transaction_id": res.Registration.TransactionID,
		},
		"tournament": fiber.Map{
			"id":                   t.ID,
			"name":                 t.Name,
			"game":                 t.Game,
			"prize_pool":           t.PrizePool,
			"thumbnail":            t.Thumbnail,
			"status":               t.Status,
			"current_participants": t.CurrentParticipants,
			"max_participants":     t.MaxParticipants,
			"start_date":           dateOnly(t.StartDate),
			"end_date":             dateOnly(t.EndDate),
		},
	})
}

func (h *TournamentHandler) MyTournaments(c *fiber.Ctx) error {
	regs, err := h.Tournaments.ListUserRegistrations(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]fiber.Map, 0, len(regs))
	for _, reg := range regs {
		t := reg.Tournament
		if t == nil {
			continue
		}
		var earnings, nextMatch interface{}
		if reg.Earnings.Valid {
			earnings = utils.FormatUSD(reg.Earnings.Decimal)
		}
		if reg.Status == models.RegistrationStatusRegistered && !t.StartDate.IsZero() {
			nextMatch = t.StartDate.UTC().Format(time.DateOnly) + " 14:00"
		}
		thumb := t.Thumbnail
		if thumb == "" {
			thumb = "/placeholder.svg"
		}
		out = append(out, fiber.Map{
			"id":              t.ID,
			"registration_id": reg.ID,
			"name":            t.Name,
			"game":            t.Game,
			"status":          reg.Status,
			"placement":       reg.Placement,
			"earnings":        earnings,
			"nextMatch":       nextMatch,
			"thumbnail":       thumb,
			"prize_pool":      t.PrizePool,
			"start_date":      dateOnly(t.StartDate),
			"end_date":        dateOnly(t.EndDate),
		})
	}
	return c.JSON(fiber.Map{"tournaments": out})
}

type createTournamentRequest struct {
	Name            string          `json:"name"`
	Game            string          `json:"game"`
	PrizePool       string          `json:"prize_pool"`
	EntryFee        decimal.Decimal `json:"entry_fee"`
	MaxParticipants int             `json:"max_participants"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Organizer       string          `json:"organizer"`
	Format          string          `json:"format"`
	Thumbnail       string          `json:"thumbnail"`
	Details         json.RawMessage `json:"details"`
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func (h *TournamentHandler) CreateTournament(c *fiber.Ctx) error {
	var req createTournamentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return badRequest(c, "invalid start_date (use RFC3339 or YYYY-MM-DD)")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return badRequest(c, "invalid end_date (use RFC3339 or YYYY-MM-DD)")
	}
	var details datatypes.JSON
	if len(req.Details) > 0 && string(req.Details) != "null" {
		details = datatypes.JSON(req.Details)
	}

	t, err := h.Tournaments.Create(c.UserContext(), services.CreateTournamentInput{
		Name:            req.Name,
		Game:            req.Game,
		PrizePool:       req.PrizePool,
		EntryFee:        req.EntryFee,
		MaxParticipants: req.MaxParticipants,
		StartDate:       start,
		EndDate:         end,
		Organizer:       req.Organizer,
		Format:          req.Format,
		Thumbnail:       req.Thumbnail,
		Details:         details,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tournamentJSON(t))
}

func (h *TournamentHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	t, err := h.Tournaments.UpdateStatus(c.UserContext(), c.Params("id"), models.TournamentStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tournamentJSON(t))
}

func (h *TournamentHandler) RecordResult(c *fiber.Ctx) error {
	var req struct {
		UserID    string          `json:"user_id"`
		Placement string          `json:"placement"`
		Earnings  decimal.Decimal `json:"earnings"`
		Status    string          `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	if req.UserID == "" {
		return badRequest(c, "user_id is required")
	}
	reg, err := h.Registrations.RecordResult(c.UserContext(), c.Params("id"), services.ResultInput{
		UserID:    req.UserID,
		Placement: req.Placement,
		Earnings:  req.Earnings,
		Status:    models.RegistrationStatus(req.Status),
	})
	if err != nil {
		return respondError(c, err)
	}
	var earnings interface{}
	if reg.Earnings.Valid {
		earnings = reg.Earnings.Decimal.InexactFloat64()
	}
	return c.JSON(fiber.Map{
		"registration_id": reg.ID,
		"user_id":         reg.UserID,
		"status":          reg.Status,
		"placement":       reg.Placement,
		"earnings":        earnings,
	})
}
