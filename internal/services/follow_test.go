package services

import (
	"context"
	"errors"
	"testing"

	"github.com/studhue/apiserver/internal/store"
)

type mockFollowRepo struct {
	createFn func(ctx context.Context, followerID, followingID string) error
	deleteFn func(ctx context.Context, followerID, followingID string) error
}

func (m *mockFollowRepo) Create(ctx context.Context, followerID, followingID string) error {
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followingID)
	}
	return nil
}

func (m *mockFollowRepo) Delete(ctx context.Context, followerID, followingID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followingID)
	}
	return nil
}

func TestFollowRejectsSelf(t *testing.T) {
	createCalled := false
	repo := &mockFollowRepo{
		createFn: func(ctx context.Context, followerID, followingID string) error {
			createCalled = true
			return nil
		},
	}
	svc := NewFollowService(repo)

	if err := svc.Follow(context.Background(), "user-1", "user-1"); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("err = %v, want ErrSelfFollow", err)
	}
	if createCalled {
		t.Fatal("self-follow must never reach the store")
	}
}

func TestFollowPublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewFollowService(&mockFollowRepo{}).WithEvents(pub)

	if err := svc.Follow(context.Background(), "user-1", "user-2"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if len(pub.channels) != 1 || pub.channels[0] != "follow-events" {
		t.Fatalf("published to %v, want [follow-events]", pub.channels)
	}
}

func TestFollowPassesThroughConflict(t *testing.T) {
	repo := &mockFollowRepo{
		createFn: func(ctx context.Context, followerID, followingID string) error {
			return store.ErrConflict
		},
	}
	svc := NewFollowService(repo)

	if err := svc.Follow(context.Background(), "user-1", "user-2"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestUnfollowMissingEdgeSucceeds(t *testing.T) {
	svc := NewFollowService(&mockFollowRepo{})

	if err := svc.Unfollow(context.Background(), "user-1", "never-followed"); err != nil {
		t.Fatalf("unfollow must be idempotent, got %v", err)
	}
}
