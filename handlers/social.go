package handlers

import (
	"time"

	"unity-gaming/middleware"
	"unity-gaming/models"
	"unity-gaming/services"

	"github.com/gofiber/fiber/v2"
)

type SocialHandler struct {
	Social *services.SocialService
}

func SetupSocialRoutes(r fiber.Router, h *SocialHandler) {
	chat := r.Group("/chat")
	chat.Get("/history/:userId", h.History)
	chat.Post("/send", h.Send)
	chat.Post("/mark-read/:userId", h.MarkRead)
	chat.Post("/start", h.StartChat)

	friends := r.Group("/friends")
	friends.Get("/", h.Friends)
	friends.Post("/request", h.SendRequest)
	friends.Get("/requests", h.PendingRequests)
	friends.Post("/accept/:id", h.Accept)
	friends.Post("/reject/:id", h.Reject)
}

func messageJSON(m *models.ChatMessage, me string) fiber.Map {
	out := fiber.Map{
		"id":          m.ID,
		"senderId":    m.SenderID,
		"recipientId": m.RecipientID,
		"content":     m.Content,
		"type":        m.MessageType,
		"isRead":      m.IsRead,
		"isOwn":       m.SenderID == me,
		"timestamp":   m.CreatedAt,
	}
	if m.Sender != nil {
		out["senderName"] = m.Sender.Username
	}
	return out
}

func (h *SocialHandler) History(c *fiber.Ctx) error {
	me := middleware.UserID(c)
	msgs, err := h.Social.History(c.UserContext(), me, c.Params("userId"), c.QueryInt("limit", 200))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]fiber.Map, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageJSON(&msgs[i], me))
	}
	return c.JSON(fiber.Map{"messages": out})
}

func (h *SocialHandler) Send(c *fiber.Ctx) error {
	var req struct {
		RecipientID string `json:"recipientId"`
		Content     string `json:"content"`
		Type        string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	me := middleware.UserID(c)
	msg, err := h.Social.Send(c.UserContext(), me, req.RecipientID, req.Content, req.Type)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": messageJSON(msg, me)})
}

func (h *SocialHandler) MarkRead(c *fiber.Ctx) error {
	n, err := h.Social.MarkRead(c.UserContext(), middleware.UserID(c), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "updated": n})
}

func (h *SocialHandler) StartChat(c *fiber.Ctx) error {
	var req struct {
		TargetUserID string `json:"targetUserId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	chatID, target, err := h.Social.StartChat(c.UserContext(), middleware.UserID(c), req.TargetUserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"chatId":     chatID,
		"targetUser": services.Summarize(target, time.Now()),
	})
}

func (h *SocialHandler) SendRequest(c *fiber.Ctx) error {
	var req struct {
		TargetUserID string `json:"targetUserId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	fr, err := h.Social.SendFriendRequest(c.UserContext(), middleware.UserID(c), req.TargetUserID)
	if err != nil {
		return respondError(c, err)
	}
	msg := "Friend request sent"
	if fr.Status == models.FriendRequestAccepted {
		msg = "Friend request accepted"
	}
	return c.JSON(fiber.Map{"message": msg, "request": fr})
}

func (h *SocialHandler) PendingRequests(c *fiber.Ctx) error {
	reqs, err := h.Social.PendingRequests(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now()
	out := make([]fiber.Map, 0, len(reqs))
	for _, r := range reqs {
		item := fiber.Map{"id": r.ID, "status": r.Status, "createdAt": r.CreatedAt}
		if r.Sender != nil {
			item["sender"] = services.Summarize(r.Sender, now)
		}
		out = append(out, item)
	}
	return c.JSON(fiber.Map{"requests": out})
}

func (h *SocialHandler) Accept(c *fiber.Ctx) error {
	return h.respond(c, true)
}

func (h *SocialHandler) Reject(c *fiber.Ctx) error {
	return h.respond(c, false)
}

func (h *SocialHandler) respond(c *fiber.Ctx, accept bool) error {
	fr, err := h.Social.RespondToRequest(c.UserContext(), middleware.UserID(c), c.Params("id"), accept)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Friend request " + fr.Status, "request": fr})
}

func (h *SocialHandler) Friends(c *fiber.Ctx) error {
	users, err := h.Social.Friends(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now()
	out := make([]services.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, services.Summarize(&users[i], now))
	}
	return c.JSON(fiber.Map{"friends": out})
}
