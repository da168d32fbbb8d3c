package posts

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/blog-app/backend/internal/auth"
	"github.com/ayush/blog-app/backend/internal/httpx"
	"github.com/ayush/blog-app/backend/internal/logging"
	"github.com/ayush/blog-app/backend/internal/models"
)

const notFoundMsg = "Post not found"

// Handler holds post HTTP handlers.
type Handler struct {
	svc *Service
	log logging.Logger
}

func NewHandler(svc *Service, log logging.Logger) *Handler {
	return &Handler{svc: svc, log: log.With("component", "posts")}
}

// List returns a page of published posts.
// Query: page, limit, category, tags (comma separated), search.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.PostFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Tags:     splitTags(q.Get("tags")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	page := ParsePositive(q.Get("page"), DefaultPage)
	limit := ParsePositive(q.Get("limit"), DefaultLimit)

	items, pagination, err := h.svc.ListPublished(r.Context(), f, page, limit)
	if err != nil {
		httpx.WriteError(w, r, h.log, "list posts", err, notFoundMsg)
		return
	}
	if items == nil {
		items = []models.Post{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"posts":      items,
		"pagination": pagination,
	})
}

// Get returns a single post by slug.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.WriteError(w, r, h.log, "get post", err, notFoundMsg)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"post": p})
}

// Mine returns every post of the caller, drafts included.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListByAuthor(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.log, "list my posts", err, notFoundMsg)
		return
	}
	if items == nil {
		items = []models.Post{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"posts": items})
}

// Create stores a new post authored by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreatePostRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		httpx.WriteError(w, r, h.log, "create post", err, notFoundMsg)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Post created successfully",
		"post":    p,
	})
}

// Update applies a partial update to a post owned by the caller.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	p, err := h.svc.Owned(r.Context(), chi.URLParam(r, "slug"), userID)
	if err != nil {
		httpx.WriteError(w, r, h.log, "update post", err, notFoundMsg)
		return
	}

	var req models.UpdatePostRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	p, err = h.svc.Apply(r.Context(), p, req)
	if err != nil {
		httpx.WriteError(w, r, h.log, "update post", err, notFoundMsg)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Post updated successfully",
		"post":    p,
	})
}

// Delete removes a post owned by the caller along with its comments.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "slug"), userID); err != nil {
		httpx.WriteError(w, r, h.log, "delete post", err, notFoundMsg)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
