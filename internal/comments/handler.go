package comments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/blog-app/backend/internal/auth"
	"github.com/ayush/blog-app/backend/internal/httpx"
	"github.com/ayush/blog-app/backend/internal/logging"
	"github.com/ayush/blog-app/backend/internal/models"
)

// Handler holds comment HTTP handlers, mounted under /api/posts/{slug}.
type Handler struct {
	svc *Service
	log logging.Logger
}

func NewHandler(svc *Service, log logging.Logger) *Handler {
	return &Handler{svc: svc, log: log.With("component", "comments")}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListForPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.WriteError(w, r, h.log, "list comments", err, "Post not found")
		return
	}
	if items == nil {
		items = []models.Comment{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"comments": items})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	post, err := h.svc.Thread(r.Context(), chi.URLParam(r, "slug"), userID)
	if err != nil {
		httpx.WriteError(w, r, h.log, "create comment", err, "Post not found")
		return
	}

	var req models.CreateCommentRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	c, err := h.svc.Reply(r.Context(), post, userID, req.Content)
	if err != nil {
		httpx.WriteError(w, r, h.log, "create comment", err, "Post not found")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment created successfully",
		"comment": c,
	})
}
