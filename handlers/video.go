package handlers

import (
	"time"

	"unity-gaming/middleware"
	"unity-gaming/models"
	"unity-gaming/services"
	"unity-gaming/utils"

	"github.com/gofiber/fiber/v2"
)

type VideoHandler struct {
	Videos *services.VideoService
}

func SetupVideoRoutes(r fiber.Router, h *VideoHandler) {
	v := r.Group("/videos")
	v.Post("/upload", h.Upload)
	v.Get("/:id", h.GetVideo)
	v.Patch("/:id", h.UpdateVideo)
}

func videoJSON(v *models.Video, now time.Time) fiber.Map {
	out := fiber.Map{
		"id":          v.ID,
		"title":       v.Title,
		"description": v.Description,
		"url":         v.URL,
		"thumbnail":   v.Thumbnail,
		"game":        v.Game,
		"duration":    v.Duration,
		"views":       utils.FormatCount(v.Views),
		"view_count":  v.Views,
		"likes":       v.Likes,
		"status":      v.Status,
		"visibility":  v.Visibility,
		"uploadedAt":  v.CreatedAt,
	}
	if v.User != nil {
		s := services.Summarize(v.User, now)
		out["creator"] = fiber.Map{"id": s.ID, "name": s.Username, "avatar": s.Avatar}
	}
	return out
}

func (h *VideoHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("video")
	if err != nil {
		return badRequest(c, "No video file provided")
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	v, err := h.Videos.Upload(c.UserContext(), services.UploadInput{
		UserID:      middleware.UserID(c),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Game:        c.FormValue("game"),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Video uploaded successfully",
		"video":   videoJSON(v, time.Now()),
	})
}

func (h *VideoHandler) Trending(c *fiber.Ctx) error {
	videos, err := h.Videos.Trending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now()
	out := make([]fiber.Map, 0, len(videos))
	for i := range videos {
		out = append(out, videoJSON(&videos[i], now))
	}
	return c.JSON(fiber.Map{"videos": out})
}

func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	v, err := h.Videos.View(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(videoJSON(v, time.Now()))
}

func (h *VideoHandler) UpdateVideo(c *fiber.Ctx) error {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Visibility  *string `json:"visibility"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	v, err := h.Videos.Update(c.UserContext(), c.Params("id"), middleware.UserID(c), services.VideoUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Visibility:  req.Visibility,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(videoJSON(v, time.Now()))
}
