package services

import (
	"context"
	"errors"
	"time"

	"github.com/studhue/apiserver/internal/mq"
)

// ErrSelfFollow indicates an attempt to follow oneself.
var ErrSelfFollow = errors.New("cannot follow yourself")

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
}

// FollowService encapsulates follow/unfollow use-cases.
type FollowService struct {
	repo   FollowRepository
	events EventPublisher
}

func NewFollowService(repo FollowRepository) *FollowService {
	return &FollowService{repo: repo}
}

// WithEvents attaches a publisher for activity events.
func (s *FollowService) WithEvents(events EventPublisher) *FollowService {
	s.events = events
	return s
}

// Follow creates a follow edge. Self-loops are rejected; a duplicate
// edge surfaces as store.ErrConflict.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return ErrSelfFollow
	}
	if err := s.repo.Create(ctx, followerID, followingID); err != nil {
		return err
	}

	publishEvent(ctx, s.events, mq.ChannelFollowEvents, UserFollowedEvent{
		FollowerID:  followerID,
		FollowingID: followingID,
		FollowedAt:  time.Now(),
	})
	return nil
}

// Unfollow deletes a follow edge. Removing an edge that does not exist
// succeeds (idempotent).
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID string) error {
	return s.repo.Delete(ctx, followerID, followingID)
}
