package handlers

import (
	"unity-gaming/middleware"
	"unity-gaming/services"

	"github.com/gofiber/fiber/v2"
)

type MatchmakingHandler struct {
	Matchmaking *services.MatchmakingService
}

func SetupMatchmakingRoutes(r fiber.Router, h *MatchmakingHandler) {
	m := r.Group("/matchmaking")
	m.Post("/find", h.Find)
	m.Post("/quick", h.Quick)
	m.Post("/record", h.Record)
	m.Get("/history", h.History)
	m.Put("/profile", h.UpsertProfile)
}

func (h *MatchmakingHandler) Find(c *fiber.Ctx) error {
	var filter services.MatchFilter
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&filter); err != nil {
			return badRequest(c, "Invalid request data")
		}
	}
	players, err := h.Matchmaking.Find(c.UserContext(), middleware.UserID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"players": players})
}

func (h *MatchmakingHandler) Quick(c *fiber.Ctx) error {
	match, err := h.Matchmaking.QuickMatch(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"match": match})
}

func (h *MatchmakingHandler) Record(c *fiber.Ctx) error {
	var req struct {
		PlayerID string `json:"playerId"`
		services.MatchFilter
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	if req.PlayerID == "" {
		return badRequest(c, "playerId is required")
	}
	m, err := h.Matchmaking.RecordSearchMatch(c.UserContext(), middleware.UserID(c), req.PlayerID, req.MatchFilter)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *MatchmakingHandler) History(c *fiber.Ctx) error {
	entries, err := h.Matchmaking.History(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"matches": entries})
}

func (h *MatchmakingHandler) UpsertProfile(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request data")
	}
	p, err := h.Matchmaking.UpsertProfile(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}
