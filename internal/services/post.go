package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/studhue/apiserver/internal/mq"
	"github.com/studhue/apiserver/types"
)

// ErrNotOwner indicates the authenticated user does not own the post.
// Ownership is decided by the post's stored owner, never by a
// client-supplied field.
var ErrNotOwner = errors.New("not the post owner")

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Get(ctx context.Context, id string) (types.Post, error)
	GetProductByPostID(ctx context.Context, postID string) (types.Product, error)
	ListVariations(ctx context.Context, productID string) ([]types.Variation, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, post types.Post, product *types.Product) error
	Delete(ctx context.Context, id string, productTyped bool) error
	ListWithAuthors(ctx context.Context) ([]types.FeedPost, error)
}

// CreatePostInput carries the fields accepted when creating a post.
// The product fields apply only when Type is PostTypeProduct.
type CreatePostInput struct {
	Caption       string
	Type          types.PostType
	ProductName   string
	Details       string
	StockQuantity int
	Price         float64
	Variations    []string
}

// UpdatePostInput carries the fields accepted when editing a post.
// Caption replaces the stored caption unconditionally. The pointer
// fields use coalesce semantics: nil keeps the stored value.
type UpdatePostInput struct {
	Caption       string
	ProductName   *string
	Details       *string
	StockQuantity *int
	Price         *float64
}

// PostService encapsulates the post/product write path.
type PostService struct {
	repo   PostRepository
	events EventPublisher
}

func NewPostService(repo PostRepository) *PostService {
	return &PostService{repo: repo}
}

// WithEvents attaches a publisher for activity events.
func (s *PostService) WithEvents(events EventPublisher) *PostService {
	s.events = events
	return s
}

// Create inserts the post and, for product posts, its product row and
// variation rows as one unit of work.
func (s *PostService) Create(ctx context.Context, userID string, input CreatePostInput) (types.Post, error) {
	post := types.Post{
		ID:      uuid.NewString(),
		UserID:  userID,
		Caption: input.Caption,
		Type:    input.Type,
	}

	if input.Type == types.PostTypeProduct {
		product := &types.Product{
			ID:            uuid.NewString(),
			PostID:        post.ID,
			UserID:        userID,
			Name:          input.ProductName,
			Details:       input.Details,
			StockQuantity: input.StockQuantity,
			Price:         input.Price,
		}
		for _, name := range input.Variations {
			product.Variations = append(product.Variations, types.Variation{
				ID:        uuid.NewString(),
				ProductID: product.ID,
				Name:      name,
			})
		}
		post.Product = product
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return types.Post{}, err
	}

	event := PostCreatedEvent{
		PostID:    created.ID,
		UserID:    created.UserID,
		PostType:  string(created.Type),
		CreatedAt: created.CreatedAt,
	}
	if created.Product != nil {
		event.ProductID = created.Product.ID
	}
	publishEvent(ctx, s.events, mq.ChannelPostEvents, event)

	return created, nil
}

// Get loads a post with its product extension and variations.
func (s *PostService) Get(ctx context.Context, id string) (types.Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Post{}, err
	}
	if post.Type == types.PostTypeProduct {
		product, err := s.repo.GetProductByPostID(ctx, id)
		if err != nil {
			return types.Post{}, err
		}
		variations, err := s.repo.ListVariations(ctx, product.ID)
		if err != nil {
			return types.Post{}, err
		}
		product.Variations = variations
		post.Product = &product
	}
	return post, nil
}

// Update edits a post owned by userID. The caption is replaced
// unconditionally; for product posts each supplied product field
// replaces the stored value and each nil field retains it. Variations
// are not edited by this operation.
func (s *PostService) Update(ctx context.Context, postID, userID string, input UpdatePostInput) error {
	post, err := s.repo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotOwner
	}

	post.Caption = input.Caption

	var product *types.Product
	if post.Type == types.PostTypeProduct {
		stored, err := s.repo.GetProductByPostID(ctx, postID)
		if err != nil {
			return err
		}
		if input.ProductName != nil {
			stored.Name = *input.ProductName
		}
		if input.Details != nil {
			stored.Details = *input.Details
		}
		if input.StockQuantity != nil {
			stored.StockQuantity = *input.StockQuantity
		}
		if input.Price != nil {
			stored.Price = *input.Price
		}
		product = &stored
	}

	return s.repo.Update(ctx, post, product)
}

// Delete removes a post owned by userID. For product posts the
// variations and product row go first, child-to-parent.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.repo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, postID, post.Type == types.PostTypeProduct)
}

// List returns the full feed, newest first, with author display fields.
func (s *PostService) List(ctx context.Context) ([]types.FeedPost, error) {
	return s.repo.ListWithAuthors(ctx)
}
