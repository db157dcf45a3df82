package handlers

import (
	"time"

	"unity-gaming/middleware"
	"unity-gaming/services"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Users *services.UserService
}

func SetupUserRoutes(r fiber.Router, h *UserHandler) {
	u := r.Group("/users")
	u.Get("/search", h.Search)
	u.Get("/online", h.Online)
	u.Post("/me/heartbeat", h.Heartbeat)
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	p, err := h.Users.Profile(c.UserContext(), c.Params("id"), time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *UserHandler) Search(c *fiber.Ctx) error {
	users, err := h.Users.Search(c.UserContext(), middleware.UserID(c), c.Query("q"), c.Query("game"), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now()
	out := make([]services.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, services.Summarize(&users[i], now))
	}
	return c.JSON(fiber.Map{"users": out})
}

func (h *UserHandler) Online(c *fiber.Ctx) error {
	now := time.Now()
	users, err := h.Users.OnlineUsers(c.UserContext(), middleware.UserID(c), now)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]services.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, services.Summarize(&users[i], now))
	}
	return c.JSON(fiber.Map{"users": out})
}

func (h *UserHandler) Heartbeat(c *fiber.Ctx) error {
	now := time.Now()
	if err := h.Users.Heartbeat(c.UserContext(), middleware.UserID(c), middleware.Username(c), now); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "last_active": now})
}
