package handlers

import (
	"encoding/json"
	"strings"

	"unity-gaming/middleware"
	"unity-gaming/models"
	"unity-gaming/services"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	Wallets *services.WalletService
}

func SetupWalletRoutes(r fiber.Router, h *WalletHandler) {
	wallet := r.Group("/wallet")
	wallet.Get("/", h.GetWallet)
	wallet.Post("/add", h.AddMoney)
	wallet.Post("/withdraw", h.WithdrawMoney)
	wallet.Get("/transactions", h.ListTransactions)
}

type amountRequest struct {
	Amount        json.RawMessage `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	wallet, err := h.Wallets.EnsureWallet(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"balance":   wallet.Balance.InexactFloat64(),
		"user_id":   userID,
		"wallet_id": wallet.ID,
	})
}

func (h *WalletHandler) AddMoney(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	amount, err := services.ParseAmount(req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		method = services.PaymentMethodCard
	}

	entry, err := h.Wallets.Credit(c.UserContext(), middleware.UserID(c), amount, method)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":        "Money added successfully",
		"balance":        entry.BalanceAfter.InexactFloat64(),
		"transaction_id": entry.ID,
		"amount_added":   amount.InexactFloat64(),
	})
}

func (h *WalletHandler) WithdrawMoney(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	amount, err := services.ParseAmount(req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	entry, err := h.Wallets.Withdraw(c.UserContext(), middleware.UserID(c), amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":          "Money withdrawn successfully",
		"balance":          entry.BalanceAfter.InexactFloat64(),
		"transaction_id":   entry.ID,
		"amount_withdrawn": amount.InexactFloat64(),
	})
}

func (h *WalletHandler) ListTransactions(c *fiber.Ctx) error {
	entries, err := h.Wallets.Transactions(c.UserContext(), middleware.UserID(c), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]fiber.Map, 0, len(entries))
	for i := range entries {
		out = append(out, transactionJSON(&entries[i]))
	}
	return c.JSON(fiber.Map{"transactions": out})
}

func transactionJSON(t *models.Transaction) fiber.Map {
	return fiber.Map{
		"id":               t.ID,
		"amount":           t.Amount.InexactFloat64(),
		"signed_amount":    t.SignedAmount().InexactFloat64(),
		"transaction_type": t.TransactionType,
		"description":      t.Description,
		"reference_id":     t.ReferenceID,
		"payment_method":   t.PaymentMethod,
		"balance_after":    t.BalanceAfter.InexactFloat64(),
		"created_at":       t.CreatedAt,
	}
}
