package handlers

import (
	"time"

	"unity-gaming/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB *gorm.DB
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "ok"
	code := fiber.StatusOK
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}

// Verify echoes the identity resolved by Authenticate.
func (h *HealthHandler) Verify(c *fiber.Ctx) error {
	roles := middleware.Roles(c)
	if roles == nil {
		roles = []string{}
	}
	return c.JSON(fiber.Map{
		"user_id":  middleware.UserID(c),
		"username": middleware.Username(c),
		"roles":    roles,
	})
}
