package models

const (
	VideoStatusProcessing = "Processing"
	VideoStatusPublished  = "Published"

	VideoVisibilityPublic   = "Public"
	VideoVisibilityUnlisted = "Unlisted"
	VideoVisibilityPrivate  = "Private"
)

// Video is an uploaded clip. The bytes live in the blob store at ObjectKey.
type Video struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	UserID      string `json:"user_id" gorm:"size:64;not null;index"`
	Title       string `json:"title" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text"`
	ObjectKey   string `json:"object_key" gorm:"size:300;not null"`
	URL         string `json:"url" gorm:"size:500"`
	Thumbnail   string `json:"thumbnail" gorm:"size:200"`
	Game        string `json:"game" gorm:"size:100;index"`
	Duration    string `json:"duration" gorm:"size:20"`
	SizeBytes   int64  `json:"size_bytes"`
	Views       int64  `json:"views" gorm:"not null;default:0"`
	Likes       int64  `json:"likes" gorm:"not null;default:0"`
	Status      string `json:"status" gorm:"size:50;not null;default:'Processing';index"`
	Visibility  string `json:"visibility" gorm:"size:50;not null;default:'Public';index"`

	Timestamps

	User *User `json:"creator,omitempty" gorm:"foreignKey:UserID"`
}

// ValidVideoStatus reports whether s is an accepted status.
func ValidVideoStatus(s string) bool {
	return s == VideoStatusProcessing || s == VideoStatusPublished
}

// ValidVideoVisibility reports whether v is an accepted visibility.
func ValidVideoVisibility(v string) bool {
	switch v {
	case VideoVisibilityPublic, VideoVisibilityUnlisted, VideoVisibilityPrivate:
		return true
	}
	return false
}
