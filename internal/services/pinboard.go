package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/studhue/apiserver/types"
)

// PinboardRepository defines persistence operations for pinboards and pins.
type PinboardRepository interface {
	Create(ctx context.Context, board types.Pinboard) (types.Pinboard, error)
	ListByUser(ctx context.Context, userID string) ([]types.Pinboard, error)
	Pin(ctx context.Context, boardID, postID string) error
	Unpin(ctx context.Context, boardID, postID string) error
}

// PinboardService encapsulates pinboard use-cases.
type PinboardService struct {
	repo PinboardRepository
}

func NewPinboardService(repo PinboardRepository) *PinboardService {
	return &PinboardService{repo: repo}
}

func (s *PinboardService) Create(ctx context.Context, userID, name, description string) (types.Pinboard, error) {
	board := types.Pinboard{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	return s.repo.Create(ctx, board)
}

func (s *PinboardService) ListByUser(ctx context.Context, userID string) ([]types.Pinboard, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *PinboardService) Pin(ctx context.Context, boardID, postID string) error {
	return s.repo.Pin(ctx, boardID, postID)
}

func (s *PinboardService) Unpin(ctx context.Context, boardID, postID string) error {
	return s.repo.Unpin(ctx, boardID, postID)
}
