package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/studhue/apiserver/internal/services"
	"github.com/studhue/apiserver/internal/store"
	"github.com/studhue/apiserver/types"
)

// PostHandler provides HTTP handlers for the post/product write path.
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler constructs a handler with the provided service.
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// PostRouter registers post routes on the given router. Every post
// route requires authentication, the feed listing included.
func PostRouter(r chi.Router, postService *services.PostService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewPostHandler(postService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListPosts)
	r.Post("/", handler.CreatePost)
	r.Route("/{postID}", func(r chi.Router) {
		r.Get("/", handler.GetPost)
		r.Put("/", handler.UpdatePost)
		r.Delete("/", handler.DeletePost)
	})
}

// CreatePost creates a regular or product post.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	postType := types.PostType(strings.TrimSpace(req.PostType))
	if postType == "" {
		postType = types.PostTypeRegular
	}
	if postType != types.PostTypeRegular && postType != types.PostTypeProduct {
		writeError(w, http.StatusBadRequest, "invalid post type")
		return
	}

	created, err := h.postService.Create(r.Context(), identity.UserID, services.CreatePostInput{
		Caption:       req.Caption,
		Type:          postType,
		ProductName:   req.ProductName,
		Details:       req.Details,
		StockQuantity: req.StockQuantity,
		Price:         req.Price,
		Variations:    req.Variations,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	resp := CreatePostResponse{Message: "regular post created", PostID: created.ID}
	if created.Product != nil {
		resp.Message = "product post created"
		resp.ProductID = created.Product.ID
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetPost returns a single post with its product extension and
// variations, if any.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product info not found")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to fetch post")
		}
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// UpdatePost edits a post's caption and, for product posts, its product
// fields with coalesce-to-existing semantics.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	postID := chi.URLParam(r, "postID")

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err = h.postService.Update(r.Context(), postID, identity.UserID, services.UpdatePostInput{
		Caption:       req.Caption,
		ProductName:   req.ProductName,
		Details:       req.Details,
		StockQuantity: req.StockQuantity,
		Price:         req.Price,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product info not found")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		case errors.Is(err, services.ErrNotOwner):
			writeError(w, http.StatusForbidden, "not authorized")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update post")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post updated"})
}

// DeletePost removes a post, cascading over the product and its
// variations for product posts.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	postID := chi.URLParam(r, "postID")

	if err := h.postService.Delete(r.Context(), postID, identity.UserID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		case errors.Is(err, services.ErrNotOwner):
			writeError(w, http.StatusForbidden, "not authorized")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete post")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// ListPosts returns the full feed with author display fields, newest first.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	feed, err := h.postService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

type CreatePostRequest struct {
	Caption       string   `json:"caption"`
	PostType      string   `json:"post_type"`
	ProductName   string   `json:"product_name"`
	Details       string   `json:"details"`
	StockQuantity int      `json:"stock_quantity"`
	Price         float64  `json:"price"`
	Variations    []string `json:"variations"`
}

type CreatePostResponse struct {
	Message   string `json:"message"`
	PostID    string `json:"postId"`
	ProductID string `json:"productId,omitempty"`
}

// UpdatePostRequest uses pointer fields for the product attributes so an
// absent field is distinguishable from a zero value: absent keeps the
// stored value.
type UpdatePostRequest struct {
	Caption       string   `json:"caption"`
	ProductName   *string  `json:"product_name"`
	Details       *string  `json:"details"`
	StockQuantity *int     `json:"stock_quantity"`
	Price         *float64 `json:"price"`
}
