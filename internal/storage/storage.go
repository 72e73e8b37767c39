package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Media wraps an ObjectStorage backend and owns the key layout for
// user-uploaded media such as avatars.
type Media struct {
	backend ObjectStorage
}

// NewMedia constructs a Media store for the provided backend.
func NewMedia(backend ObjectStorage) *Media {
	return &Media{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (m *Media) EnsureBucket(ctx context.Context) error {
	return m.backend.EnsureBucket(ctx)
}

// PutAvatar stores a user's avatar and returns its object key.
func (m *Media) PutAvatar(ctx context.Context, userID, filename string, r io.Reader, size int64) (string, error) {
	key := AvatarKey(userID, filename)
	if err := m.backend.Put(ctx, key, r, size, ImageContentType(filename)); err != nil {
		return "", err
	}
	return key, nil
}

// Get opens a reader for an object in the configured bucket.
func (m *Media) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return m.backend.Get(ctx, key)
}

// Delete removes an object from the configured bucket.
func (m *Media) Delete(ctx context.Context, key string) error {
	return m.backend.Delete(ctx, key)
}

// AvatarKey builds the object key for a user's avatar. One key per user
// and extension: re-uploading replaces the previous avatar.
func AvatarKey(userID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".img"
	}
	return fmt.Sprintf("avatars/%s%s", userID, ext)
}

// ImageContentType maps a filename or object key to its image MIME type.
func ImageContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
