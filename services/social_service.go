package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"unity-gaming/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxMessageLength = 2000

// SocialService covers direct messages and friend requests.
type SocialService struct {
	DB *gorm.DB
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{DB: db}
}

// History returns the conversation between userID and otherID, oldest first.
func (s *SocialService) History(ctx context.Context, userID, otherID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	var msgs []models.ChatMessage
	err := s.DB.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userID, otherID, otherID, userID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// Send stores a message from senderID to recipientID.
func (s *SocialService) Send(ctx context.Context, senderID, recipientID, content, kind string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	switch {
	case recipientID == "":
		return nil, fmt.Errorf("recipientId is required: %w", ErrInvalidInput)
	case recipientID == senderID:
		return nil, fmt.Errorf("cannot message yourself: %w", ErrInvalidInput)
	case content == "":
		return nil, fmt.Errorf("content is required: %w", ErrInvalidInput)
	case len(content) > maxMessageLength:
		return nil, fmt.Errorf("content longer than %d characters: %w", maxMessageLength, ErrInvalidInput)
	}
	if kind == "" {
		kind = "text"
	}
	if err := s.requireUser(ctx, recipientID); err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		MessageType: kind,
	}
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkRead flags every unread message from otherID to userID.
func (s *SocialService) MarkRead(ctx context.Context, userID, otherID string) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", otherID, userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// StartChat resolves the target user and the conversation key.
func (s *SocialService) StartChat(ctx context.Context, userID, targetID string) (string, *models.User, error) {
	if targetID == "" || targetID == userID {
		return "", nil, fmt.Errorf("targetUserId must be another user: %w", ErrInvalidInput)
	}
	var target models.User
	if err := s.DB.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		return "", nil, notFound(err)
	}
	return models.ChatID(userID, targetID), &target, nil
}

// SendFriendRequest creates a pending request. A request the target already
// sent the caller is accepted instead.
func (s *SocialService) SendFriendRequest(ctx context.Context, senderID, targetID string) (*models.FriendRequest, error) {
	if targetID == "" || targetID == senderID {
		return nil, fmt.Errorf("targetUserId must be another user: %w", ErrInvalidInput)
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}

	var out *models.FriendRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reverse models.FriendRequest
		err := tx.Where("sender_id = ? AND recipient_id = ?", targetID, senderID).First(&reverse).Error
		if err == nil && reverse.Status == models.FriendRequestPending {
			if err := tx.Model(&reverse).Update("status", models.FriendRequestAccepted).Error; err != nil {
				return err
			}
			reverse.Status = models.FriendRequestAccepted
			out = &reverse
			return nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		req := &models.FriendRequest{
			ID:          uuid.NewString(),
			SenderID:    senderID,
			RecipientID: targetID,
			Status:      models.FriendRequestPending,
		}
		if err := tx.Create(req).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("friend request already sent: %w", ErrConflict)
			}
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[FRIENDS] 🤝 %s -> %s: %s", senderID, targetID, out.Status)
	return out, nil
}

// PendingRequests lists requests waiting on userID, newest first.
func (s *SocialService) PendingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := s.DB.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// RespondToRequest accepts or rejects a pending request addressed to userID.
func (s *SocialService) RespondToRequest(ctx context.Context, userID, requestID string, accept bool) (*models.FriendRequest, error) {
	status := models.FriendRequestRejected
	if accept {
		status = models.FriendRequestAccepted
	}
	var req models.FriendRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			return notFound(err)
		}
		if req.RecipientID != userID {
			return ErrForbidden
		}
		if req.Status != models.FriendRequestPending {
			return fmt.Errorf("request already %s: %w", req.Status, ErrConflict)
		}
		if err := tx.Model(&req).Update("status", status).Error; err != nil {
			return err
		}
		req.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Friends returns the users userID has an accepted request with.
func (s *SocialService) Friends(ctx context.Context, userID string) ([]models.User, error) {
	var users []models.User
	err := s.DB.WithContext(ctx).
		Where("id IN (?) OR id IN (?)",
			s.DB.Model(&models.FriendRequest{}).Select("recipient_id").Where("sender_id = ? AND status = ?", userID, models.FriendRequestAccepted),
			s.DB.Model(&models.FriendRequest{}).Select("sender_id").Where("recipient_id = ? AND status = ?", userID, models.FriendRequestAccepted),
		).
		Order("username").
		Find(&users).Error
	return users, err
}

func (s *SocialService) requireUser(ctx context.Context, id string) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}
