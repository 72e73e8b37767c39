package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/studhue/apiserver/internal/services"
)

// PinboardHandler provides HTTP handlers for pinboards and pins.
type PinboardHandler struct {
	pinboardService *services.PinboardService
}

// NewPinboardHandler constructs a handler with the provided service.
func NewPinboardHandler(pinboardService *services.PinboardService) *PinboardHandler {
	return &PinboardHandler{pinboardService: pinboardService}
}

// PinboardRouter registers pinboard routes on the given router.
func PinboardRouter(r chi.Router, pinboardService *services.PinboardService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewPinboardHandler(pinboardService)

	r.Use(authMiddleware)
	r.Post("/", handler.CreateBoard)
	r.Get("/", handler.ListBoards)
	r.Post("/pin", handler.Pin)
	r.Delete("/pin", handler.Unpin)
}

// CreateBoard creates a pinboard owned by the authenticated user.
func (h *PinboardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req CreateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "board name is required")
		return
	}

	board, err := h.pinboardService.Create(r.Context(), identity.UserID, req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create board")
		return
	}

	writeJSON(w, http.StatusCreated, board)
}

// ListBoards returns the authenticated user's pinboards.
func (h *PinboardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	boards, err := h.pinboardService.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch boards")
		return
	}

	writeJSON(w, http.StatusOK, boards)
}

// Pin adds a post to a pinboard.
// TODO: verify the board belongs to the authenticated user before
// pinning; today any authenticated user can pin to any board ID.
func (h *PinboardHandler) Pin(w http.ResponseWriter, r *http.Request) {
	if _, err := identityFromContext(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	req, ok := decodePinRequest(w, r)
	if !ok {
		return
	}

	if err := h.pinboardService.Pin(r.Context(), req.BoardID, req.PostID); err != nil {
		writeError(w, http.StatusBadRequest, "already pinned or error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post pinned to pinboard"})
}

// Unpin removes a post from a pinboard. Unpinning a post that was never
// pinned succeeds.
func (h *PinboardHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	if _, err := identityFromContext(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	req, ok := decodePinRequest(w, r)
	if !ok {
		return
	}

	if err := h.pinboardService.Unpin(r.Context(), req.BoardID, req.PostID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unpin")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post unpinned from pinboard"})
}

func decodePinRequest(w http.ResponseWriter, r *http.Request) (PinRequest, bool) {
	var req PinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return PinRequest{}, false
	}
	if strings.TrimSpace(req.BoardID) == "" || strings.TrimSpace(req.PostID) == "" {
		writeError(w, http.StatusBadRequest, "board_ID and post_ID are required")
		return PinRequest{}, false
	}
	return req, true
}

type CreateBoardRequest struct {
	Name        string `json:"board_name"`
	Description string `json:"board_description"`
}

type PinRequest struct {
	BoardID string `json:"board_ID"`
	PostID  string `json:"post_ID"`
}
