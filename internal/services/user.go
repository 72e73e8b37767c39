package services

import (
	"context"
	"errors"
	"io"

	"github.com/studhue/apiserver/internal/storage"
	"github.com/studhue/apiserver/types"
)

// ErrNoAvatar indicates the user has never uploaded an avatar.
var ErrNoAvatar = errors.New("no avatar set")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetProfilePicture(ctx context.Context, userID, objectKey string) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo  UserRepository
	media *storage.Media
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// WithMedia attaches a media store used for avatar uploads.
func (s *UserService) WithMedia(media *storage.Media) *UserService {
	s.media = media
	return s
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByUsernameOrEmail(ctx context.Context, username, email string) (types.User, error) {
	return s.repo.GetByUsernameOrEmail(ctx, username, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

// HasMedia reports whether an avatar storage backend is configured.
func (s *UserService) HasMedia() bool {
	return s.media != nil
}

// SetAvatar stores the uploaded image and records its object key on the
// user row. A previous avatar stored under a different key is removed
// afterwards, best effort.
func (s *UserService) SetAvatar(ctx context.Context, userID, filename string, r io.Reader, size int64) (string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	key, err := s.media.PutAvatar(ctx, userID, filename, r, size)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetProfilePicture(ctx, userID, key); err != nil {
		return "", err
	}

	if old := user.ProfilePicture; old != "" && old != key {
		_ = s.media.Delete(ctx, old)
	}
	return key, nil
}

// GetAvatar opens a reader over the user's stored avatar and returns its
// object key alongside.
func (s *UserService) GetAvatar(ctx context.Context, userID string) (io.ReadCloser, string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user.ProfilePicture == "" {
		return nil, "", ErrNoAvatar
	}
	reader, err := s.media.Get(ctx, user.ProfilePicture)
	if err != nil {
		return nil, "", err
	}
	return reader, user.ProfilePicture, nil
}
