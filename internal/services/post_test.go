package services

import (
	"context"
	"errors"
	"testing"

	"github.com/studhue/apiserver/internal/store"
	"github.com/studhue/apiserver/types"
)

type mockPostRepo struct {
	getFn            func(ctx context.Context, id string) (types.Post, error)
	getProductFn     func(ctx context.Context, postID string) (types.Product, error)
	listVariationsFn func(ctx context.Context, productID string) ([]types.Variation, error)
	createFn         func(ctx context.Context, post types.Post) (types.Post, error)
	updateFn         func(ctx context.Context, post types.Post, product *types.Product) error
	deleteFn         func(ctx context.Context, id string, productTyped bool) error
	listFn           func(ctx context.Context) ([]types.FeedPost, error)
}

func (m *mockPostRepo) Get(ctx context.Context, id string) (types.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return types.Post{}, store.ErrNotFound
}

func (m *mockPostRepo) GetProductByPostID(ctx context.Context, postID string) (types.Product, error) {
	if m.getProductFn != nil {
		return m.getProductFn(ctx, postID)
	}
	return types.Product{}, store.ErrNotFound
}

func (m *mockPostRepo) ListVariations(ctx context.Context, productID string) ([]types.Variation, error) {
	if m.listVariationsFn != nil {
		return m.listVariationsFn(ctx, productID)
	}
	return nil, nil
}

func (m *mockPostRepo) Create(ctx context.Context, post types.Post) (types.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return post, nil
}

func (m *mockPostRepo) Update(ctx context.Context, post types.Post, product *types.Product) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, post, product)
	}
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string, productTyped bool) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, productTyped)
	}
	return nil
}

func (m *mockPostRepo) ListWithAuthors(ctx context.Context) ([]types.FeedPost, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockPublisher struct {
	channels []string
	payloads [][]byte
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	m.channels = append(m.channels, channel)
	m.payloads = append(m.payloads, data)
	return "msg-1", nil
}

func TestCreateRegularPost(t *testing.T) {
	var captured types.Post
	repo := &mockPostRepo{
		createFn: func(ctx context.Context, post types.Post) (types.Post, error) {
			captured = post
			return post, nil
		},
	}
	svc := NewPostService(repo)

	created, err := svc.Create(context.Background(), "user-1", CreatePostInput{
		Caption: "hi",
		Type:    types.PostTypeRegular,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected post ID to be generated")
	}
	if captured.UserID != "user-1" {
		t.Fatalf("owner = %q, want user-1", captured.UserID)
	}
	if captured.Product != nil {
		t.Fatal("regular post must not carry a product")
	}
}

func TestCreateProductPostWithVariations(t *testing.T) {
	var captured types.Post
	repo := &mockPostRepo{
		createFn: func(ctx context.Context, post types.Post) (types.Post, error) {
			captured = post
			return post, nil
		},
	}
	svc := NewPostService(repo)

	created, err := svc.Create(context.Background(), "user-1", CreatePostInput{
		Caption:       "new mug",
		Type:          types.PostTypeProduct,
		ProductName:   "Mug",
		Price:         5,
		StockQuantity: 10,
		Variations:    []string{"red", "blue"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Product == nil {
		t.Fatal("expected a product")
	}
	if created.Product.ID == "" {
		t.Fatal("expected product ID to be generated")
	}
	if got := len(captured.Product.Variations); got != 2 {
		t.Fatalf("variations = %d, want 2", got)
	}
	for _, v := range captured.Product.Variations {
		if v.ProductID != captured.Product.ID {
			t.Fatalf("variation linked to %q, want %q", v.ProductID, captured.Product.ID)
		}
		if v.ID == "" {
			t.Fatal("expected variation ID to be generated")
		}
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewPostService(&mockPostRepo{}).WithEvents(pub)

	if _, err := svc.Create(context.Background(), "user-1", CreatePostInput{Caption: "hi", Type: types.PostTypeRegular}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.channels) != 1 || pub.channels[0] != "post-events" {
		t.Fatalf("published to %v, want [post-events]", pub.channels)
	}
}

func TestCreateRepoFailureSuppressesEvent(t *testing.T) {
	pub := &mockPublisher{}
	repo := &mockPostRepo{
		createFn: func(ctx context.Context, post types.Post) (types.Post, error) {
			return types.Post{}, errors.New("boom")
		},
	}
	svc := NewPostService(repo).WithEvents(pub)

	if _, err := svc.Create(context.Background(), "user-1", CreatePostInput{Type: types.PostTypeRegular}); err == nil {
		t.Fatal("expected error")
	}
	if len(pub.channels) != 0 {
		t.Fatal("no event must be published when the write fails")
	}
}

func TestUpdateCoalescesProductFields(t *testing.T) {
	stored := types.Product{
		ID:            "prod-1",
		PostID:        "post-1",
		Name:          "Mug",
		Details:       "ceramic",
		StockQuantity: 10,
		Price:         5,
	}
	var gotPost types.Post
	var gotProduct *types.Product
	repo := &mockPostRepo{
		getFn: func(ctx context.Context, id string) (types.Post, error) {
			return types.Post{ID: id, UserID: "user-1", Caption: "old", Type: types.PostTypeProduct}, nil
		},
		getProductFn: func(ctx context.Context, postID string) (types.Product, error) {
			return stored, nil
		},
		updateFn: func(ctx context.Context, post types.Post, product *types.Product) error {
			gotPost = post
			gotProduct = product
			return nil
		},
	}
	svc := NewPostService(repo)

	price := 7.5
	err := svc.Update(context.Background(), "post-1", "user-1", UpdatePostInput{
		Caption: "new caption",
		Price:   &price,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotPost.Caption != "new caption" {
		t.Fatalf("caption = %q, want replaced unconditionally", gotPost.Caption)
	}
	if gotProduct == nil {
		t.Fatal("expected a product update for a product post")
	}
	if gotProduct.Price != 7.5 {
		t.Fatalf("price = %v, want 7.5", gotProduct.Price)
	}
	if gotProduct.Name != "Mug" || gotProduct.Details != "ceramic" || gotProduct.StockQuantity != 10 {
		t.Fatalf("unsupplied fields changed: %+v", gotProduct)
	}
}

func TestUpdateRegularPostSkipsProduct(t *testing.T) {
	var gotProduct *types.Product
	repo := &mockPostRepo{
		getFn: func(ctx context.Context, id string) (types.Post, error) {
			return types.Post{ID: id, UserID: "user-1", Type: types.PostTypeRegular}, nil
		},
		updateFn: func(ctx context.Context, post types.Post, product *types.Product) error {
			gotProduct = product
			return nil
		},
	}
	svc := NewPostService(repo)

	if err := svc.Update(context.Background(), "post-1", "user-1", UpdatePostInput{Caption: "x"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotProduct != nil {
		t.Fatal("regular post update must not touch products")
	}
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	updateCalled := false
	repo := &mockPostRepo{
		getFn: func(ctx context.Context, id string) (types.Post, error) {
			return types.Post{ID: id, UserID: "owner", Type: types.PostTypeRegular}, nil
		},
		updateFn: func(ctx context.Context, post types.Post, product *types.Product) error {
			updateCalled = true
			return nil
		},
	}
	svc := NewPostService(repo)

	err := svc.Update(context.Background(), "post-1", "intruder", UpdatePostInput{Caption: "x"})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
	if updateCalled {
		t.Fatal("store must not be written for a non-owner")
	}
}

func TestUpdateMissingProductRow(t *testing.T) {
	repo := &mockPostRepo{
		getFn: func(ctx context.Context, id string) (types.Post, error) {
			return types.Post{ID: id, UserID: "user-1", Type: types.PostTypeProduct}, nil
		},
		getProductFn: func(ctx context.Context, postID string) (types.Product, error) {
			return types.Product{}, store.ErrProductNotFound
		},
	}
	svc := NewPostService(repo)

	err := svc.Update(context.Background(), "post-1", "user-1", UpdatePostInput{Caption: "x"})
	if !errors.Is(err, store.ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
	// The product sentinel still satisfies generic not-found checks.
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatal("ErrProductNotFound must wrap ErrNotFound")
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := NewPostService(&mockPostRepo{})

	err := svc.Update(context.Background(), "missing", "user-1", UpdatePostInput{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRejectsNonOwner(t *testing.T) {
	repo := &mockPostRepo{
		getFn: func(ctx context.Context, id string) (types.Post, error) {
			return types.Post{ID: id, UserID: "owner"}, nil
		},
	}
	svc := NewPostService(repo)

	if err := svc.Delete(context.Background(), "post-1", "intruder"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
}

func TestDeleteFlagsProductTypedPosts(t *testing.T) {
	var gotProductTyped bool
	repo := &mockPostRepo{
		getFn: func(ctx context.Context, id string) (types.Post, error) {
			return types.Post{ID: id, UserID: "user-1", Type: types.PostTypeProduct}, nil
		},
		deleteFn: func(ctx context.Context, id string, productTyped bool) error {
			gotProductTyped = productTyped
			return nil
		},
	}
	svc := NewPostService(repo)

	if err := svc.Delete(context.Background(), "post-1", "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !gotProductTyped {
		t.Fatal("product post delete must cascade over product and variations")
	}
}

func TestGetAssemblesProductAndVariations(t *testing.T) {
	repo := &mockPostRepo{
		getFn: func(ctx context.Context, id string) (types.Post, error) {
			return types.Post{ID: id, UserID: "user-1", Type: types.PostTypeProduct}, nil
		},
		getProductFn: func(ctx context.Context, postID string) (types.Product, error) {
			return types.Product{ID: "prod-1", PostID: postID, Name: "Mug"}, nil
		},
		listVariationsFn: func(ctx context.Context, productID string) ([]types.Variation, error) {
			return []types.Variation{{ID: "v1", ProductID: productID, Name: "red"}}, nil
		},
	}
	svc := NewPostService(repo)

	post, err := svc.Get(context.Background(), "post-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if post.Product == nil || len(post.Product.Variations) != 1 {
		t.Fatalf("expected product with one variation, got %+v", post.Product)
	}
}
