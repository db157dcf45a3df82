package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"unity-gaming/database"
	"unity-gaming/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestVideoKey(t *testing.T) {
	key, err := VideoKey("abc", "My Best Clutch!", "clip.MP4")
	require.NoError(t, err)
	assert.Equal(t, "videos/abc-my-best-clutch.mp4", key)

	key, err = VideoKey("abc", "???", "x.webm")
	require.NoError(t, err)
	assert.Equal(t, "videos/abc-clip.webm", key)

	_, err = VideoKey("abc", "t", "virus.exe")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVideo_UploadStoresBlobAndRow(t *testing.T) {
	db := database.OpenTest(t)
	blobs := new(mockBlobStore)
	svc := NewVideoService(db, blobs)
	ctx := context.Background()

	blobs.On("Put", ctx, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "videos/") && strings.HasSuffix(k, "-ace-round.mp4")
	}), mock.Anything, int64(4), "video/mp4").Return("https://cdn.example.com/v.mp4", nil).Once()

	v, err := svc.Upload(ctx, UploadInput{
		UserID:      "u1",
		Title:       "Ace round",
		Filename:    "ace.mp4",
		ContentType: "video/mp4",
		Size:        4,
		Body:        strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v.mp4", v.URL)
	assert.Equal(t, models.VideoStatusProcessing, v.Status)
	assert.Equal(t, "Various", v.Game)
	blobs.AssertExpectations(t)

	var stored models.Video
	require.NoError(t, db.First(&stored, "id = ?", v.ID).Error)
	assert.Equal(t, v.ObjectKey, stored.ObjectKey)
}

func TestVideo_UploadRejectsBeforeTouchingStore(t *testing.T) {
	db := database.OpenTest(t)
	blobs := new(mockBlobStore)
	svc := NewVideoService(db, blobs)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{UserID: "u1", Title: "", Filename: "a.mp4", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Upload(ctx, UploadInput{UserID: "u1", Title: "t", Filename: "a.txt", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Upload(ctx, UploadInput{UserID: "u1", Title: "t", Filename: "a.mp4"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVideo_UploadStoreFailure(t *testing.T) {
	db := database.OpenTest(t)
	blobs := new(mockBlobStore)
	svc := NewVideoService(db, blobs)
	ctx := context.Background()

	blobs.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket gone")).Once()

	_, err := svc.Upload(ctx, UploadInput{UserID: "u1", Title: "t", Filename: "a.mp4", Size: 1, Body: strings.NewReader("x")})
	require.Error(t, err)

	var n int64
	require.NoError(t, db.Model(&models.Video{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestVideo_TrendingViewUpdate(t *testing.T) {
	db := database.OpenTest(t)
	svc := NewVideoService(db, new(mockBlobStore))
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{ID: "u1", Username: "Owner"}).Error)
	videos := []models.Video{
		{ID: "popular", UserID: "u1", Title: "Popular", ObjectKey: "k1", Views: 100, Likes: 50, Status: models.VideoStatusPublished, Visibility: models.VideoVisibilityPublic},
		{ID: "viewed", UserID: "u1", Title: "Viewed", ObjectKey: "k2", Views: 500, Likes: 0, Status: models.VideoStatusPublished, Visibility: models.VideoVisibilityPublic},
		{ID: "secret", UserID: "u1", Title: "Secret", ObjectKey: "k3", Views: 9999, Status: models.VideoStatusPublished, Visibility: models.VideoVisibilityPrivate},
		{ID: "draft", UserID: "u1", Title: "Draft", ObjectKey: "k4", Views: 9999, Status: models.VideoStatusProcessing, Visibility: models.VideoVisibilityPublic},
	}
	require.NoError(t, db.Create(&videos).Error)

	trending, err := svc.Trending(ctx)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, "popular", trending[0].ID)
	require.NotNil(t, trending[0].User)
	assert.Equal(t, "Owner", trending[0].User.Username)

	v, err := svc.View(ctx, "viewed", "someone")
	require.NoError(t, err)
	assert.EqualValues(t, 501, v.Views)

	_, err = svc.View(ctx, "secret", "someone")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.View(ctx, "secret", "u1")
	assert.NoError(t, err)

	title := "Renamed"
	_, err = svc.Update(ctx, "viewed", "someone", VideoUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	bad := "Hidden"
	_, err = svc.Update(ctx, "viewed", "u1", VideoUpdate{Visibility: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	unlisted := models.VideoVisibilityUnlisted
	updated, err := svc.Update(ctx, "viewed", "u1", VideoUpdate{Title: &title, Visibility: &unlisted})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.VideoVisibilityUnlisted, updated.Visibility)
}
