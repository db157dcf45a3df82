package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"unity-gaming/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// BlobStore keeps uploaded media. Put returns the URL clients use to fetch key.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var allowedVideoExts = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true,
}

const trendingLimit = 20

// VideoService stores clip metadata in the database and bytes in a BlobStore.
type VideoService struct {
	DB    *gorm.DB
	Blobs BlobStore
}

func NewVideoService(db *gorm.DB, blobs BlobStore) *VideoService {
	return &VideoService{DB: db, Blobs: blobs}
}

// UploadInput is one multipart video upload.
type UploadInput struct {
	UserID      string
	Title       string
	Description string
	Game        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// VideoKey builds the object key for an upload: videos/<uuid>-<slug>.<ext>.
func VideoKey(id, title, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedVideoExts[ext] {
		return "", fmt.Errorf("unsupported video type %q: %w", ext, ErrInvalidInput)
	}
	name := slug.Make(title)
	if name == "" {
		name = "clip"
	}
	if len(name) > 80 {
		name = strings.Trim(name[:80], "-")
	}
	return fmt.Sprintf("videos/%s-%s%s", id, name, ext), nil
}

// Upload writes the file to the blob store and records it as Processing.
// The blob is removed again if the row cannot be written.
func (s *VideoService) Upload(ctx context.Context, in UploadInput) (*models.Video, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if in.Body == nil || in.Size <= 0 {
		return nil, fmt.Errorf("video file is required: %w", ErrInvalidInput)
	}

	id := uuid.NewString()
	key, err := VideoKey(id, title, in.Filename)
	if err != nil {
		return nil, err
	}
	url, err := s.Blobs.Put(ctx, key, in.Body, in.Size, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}

	game := strings.TrimSpace(in.Game)
	if game == "" {
		game = "Various"
	}
	v := &models.Video{
		ID:          id,
		UserID:      in.UserID,
		Title:       title,
		Description: in.Description,
		ObjectKey:   key,
		URL:         url,
		Thumbnail:   "/placeholder.svg",
		Game:        game,
		Duration:    "0:00",
		SizeBytes:   in.Size,
		Status:      models.VideoStatusProcessing,
		Visibility:  models.VideoVisibilityPublic,
	}
	if err := s.DB.WithContext(ctx).Create(v).Error; err != nil {
		if delErr := s.Blobs.Delete(ctx, key); delErr != nil {
			log.Printf("[VIDEO] ⚠️ Orphaned blob %s: %v", key, delErr)
		}
		return nil, err
	}
	log.Printf("[VIDEO] 📼 User %s uploaded %q (%d bytes) to %s", in.UserID, title, in.Size, key)
	return v, nil
}

// Trending returns published public videos ranked by views + likes*10.
func (s *VideoService) Trending(ctx context.Context) ([]models.Video, error) {
	var videos []models.Video
	err := s.DB.WithContext(ctx).
		Preload("User").
		Where("status = ? AND visibility = ?", models.VideoStatusPublished, models.VideoVisibilityPublic).
		Order("(views + likes * 10) DESC").
		Order("created_at DESC").
		Limit(trendingLimit).
		Find(&videos).Error
	return videos, err
}

// View loads a video and counts the view. Private videos are only visible
// to their owner.
func (s *VideoService) View(ctx context.Context, id, viewerID string) (*models.Video, error) {
	db := s.DB.WithContext(ctx)
	var v models.Video
	if err := db.Preload("User").First(&v, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	if v.Visibility == models.VideoVisibilityPrivate && v.UserID != viewerID {
		return nil, ErrNotFound
	}
	if err := db.Model(&models.Video{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return nil, err
	}
	v.Views++
	return &v, nil
}

// VideoUpdate carries optional owner edits.
type VideoUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Visibility  *string
}

// Update applies an owner's edits.
func (s *VideoService) Update(ctx context.Context, id, userID string, in VideoUpdate) (*models.Video, error) {
	var out models.Video
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if out.UserID != userID {
			return ErrForbidden
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			t := strings.TrimSpace(*in.Title)
			if t == "" {
				return fmt.Errorf("title cannot be empty: %w", ErrInvalidInput)
			}
			updates["title"] = t
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Status != nil {
			if !models.ValidVideoStatus(*in.Status) {
				return fmt.Errorf("unknown status %q: %w", *in.Status, ErrInvalidInput)
			}
			updates["status"] = *in.Status
		}
		if in.Visibility != nil {
			if !models.ValidVideoVisibility(*in.Visibility) {
				return fmt.Errorf("unknown visibility %q: %w", *in.Visibility, ErrInvalidInput)
			}
			updates["visibility"] = *in.Visibility
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&out).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
