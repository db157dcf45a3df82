package handlers

import (
	"errors"
	"log"

	"unity-gaming/middleware"
	"unity-gaming/models"
	"unity-gaming/services"

	"github.com/gofiber/fiber/v2"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{services.ErrInvalidAmount, fiber.StatusBadRequest, "invalid_amount", "Invalid amount. Amount must be greater than 0 with at most two decimal places"},
	{services.ErrInsufficientFunds, fiber.StatusBadRequest, "insufficient_funds", "Insufficient balance in wallet"},
	{services.ErrRegistrationClosed, fiber.StatusBadRequest, "registration_closed", "Registration is closed for this tournament"},
	{services.ErrTournamentFull, fiber.StatusBadRequest, "tournament_full", "Tournament is full"},
	{services.ErrAlreadyRegistered, fiber.StatusBadRequest, "already_registered", "Already registered for this tournament"},
	{services.ErrNotFound, fiber.StatusNotFound, "not_found", "Not found"},
	{services.ErrForbidden, fiber.StatusForbidden, "forbidden", "Unauthorized"},
	{services.ErrConflict, fiber.StatusConflict, "conflict", ""},
	{services.ErrInvalidTransition, fiber.StatusConflict, "invalid_transition", ""},
	{services.ErrInvalidInput, fiber.StatusBadRequest, "invalid_input", ""},
	{models.ErrImmutableTransaction, fiber.StatusConflict, "immutable_transaction", ""},
}

// respondError writes the user-facing form of err. Unknown errors are logged
// and reported as a generic internal error.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return c.Status(m.status).JSON(fiber.Map{"message": msg, "code": m.code})
		}
	}
	log.Printf("❌ [API] %s %s (user %s): %v", c.Method(), c.Path(), middleware.UserID(c), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error", "code": "internal"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": message, "code": "invalid_input"})
}

// ErrorHandler is the fiber fallback for errors returned outside respondError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	return respondError(c, err)
}
