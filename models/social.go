package models

import "time"

const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// ChatMessage is a stored direct message. Delivery is pull-only.
type ChatMessage struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	SenderID    string    `json:"sender_id" gorm:"size:64;not null;index:idx_chat_pair,priority:1"`
	RecipientID string    `json:"recipient_id" gorm:"size:64;not null;index:idx_chat_pair,priority:2"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	MessageType string    `json:"type" gorm:"size:50;not null;default:'text'"`
	IsRead      bool      `json:"is_read" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

// FriendRequest is unique per (sender, recipient).
type FriendRequest struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	SenderID    string    `json:"sender_id" gorm:"size:64;not null;uniqueIndex:idx_friend_pair,priority:1"`
	RecipientID string    `json:"recipient_id" gorm:"size:64;not null;index;uniqueIndex:idx_friend_pair,priority:2"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending'"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

// ChatID is the order-independent conversation key for two users.
func ChatID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}
