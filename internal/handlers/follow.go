package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studhue/apiserver/internal/services"
)

// FollowHandler provides HTTP handlers for follow relationships.
type FollowHandler struct {
	followService *services.FollowService
}

// NewFollowHandler constructs a handler with the provided service.
func NewFollowHandler(followService *services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// FollowRouter registers followership routes on the given router.
func FollowRouter(r chi.Router, followService *services.FollowService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewFollowHandler(followService)

	r.Use(authMiddleware)
	r.Post("/follow/{followingID}", handler.Follow)
	r.Delete("/unfollow/{followingID}", handler.Unfollow)
}

// Follow creates a follow edge from the authenticated user.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	followingID := chi.URLParam(r, "followingID")

	if err := h.followService.Follow(r.Context(), identity.UserID, followingID); err != nil {
		if errors.Is(err, services.ErrSelfFollow) {
			writeError(w, http.StatusBadRequest, "cannot follow yourself")
			return
		}
		// Duplicate edges and genuine store failures are not
		// distinguished here, matching the single conflict-or-error
		// category of the endpoint.
		writeError(w, http.StatusBadRequest, "already following or error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "followed user"})
}

// Unfollow deletes a follow edge. Unfollowing a user who was never
// followed succeeds.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	followingID := chi.URLParam(r, "followingID")

	if err := h.followService.Unfollow(r.Context(), identity.UserID, followingID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unfollow")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "unfollowed user"})
}
