package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/blog-app/backend/internal/common"
	"github.com/ayush/blog-app/backend/internal/httpx"
	"github.com/ayush/blog-app/backend/internal/logging"
	"github.com/ayush/blog-app/backend/internal/models"
)

const (
	minPasswordLen = 6
	maxAvatarSize  = 2 << 20
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	// CreateUser returns common.ErrDuplicateKey when the email is taken.
	CreateUser(ctx context.Context, name, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetImage(ctx context.Context, id, image string) (*models.User, error)
}

// AvatarStore defines the interface for avatar object storage.
type AvatarStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	sessions *SessionStore
	avatars  AvatarStore // nil disables avatar routes
	log      logging.Logger
}

func NewHandler(users UserStore, sessions *SessionStore, avatars AvatarStore, log logging.Logger) *Handler {
	return &Handler{users: users, sessions: sessions, avatars: avatars, log: log.With("component", "auth")}
}

// NormalizeEmail is the identity key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	email := NormalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "name, email, and password are required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpx.Error(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.WriteError(w, r, h.log, "hash password", err, "")
		return
	}

	user, err := h.users.CreateUser(r.Context(), name, email, string(hashed))
	if errors.Is(err, common.ErrDuplicateKey) {
		httpx.Error(w, http.StatusConflict, "user already exists")
		return
	}
	if err != nil {
		httpx.WriteError(w, r, h.log, "create user", err, "")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, user)
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), NormalizeEmail(req.Email))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		httpx.WriteError(w, r, h.log, "lookup user", err, "")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sid, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		httpx.WriteError(w, r, h.log, "create session", err, "")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL() / time.Second),
	})

	httpx.WriteJSON(w, http.StatusOK, user)
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookie)
	if err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.log.Warn(r.Context(), "session delete failed", "err", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, h.log, "get user", err, "user not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func avatarKey(userID string) string { return "avatars/" + userID }

// UploadAvatar stores the multipart "avatar" image and points the user's
// image at it.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.avatars == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "avatar storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+64<<10)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarSize+1))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid avatar upload")
		return
	}
	if len(data) > maxAvatarSize {
		httpx.Error(w, http.StatusBadRequest, "avatar must be at most 2 MiB")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		httpx.Error(w, http.StatusBadRequest, "avatar must be an image")
		return
	}

	if err := h.avatars.Upload(r.Context(), avatarKey(userID), data, contentType); err != nil {
		httpx.WriteError(w, r, h.log, "upload avatar", err, "")
		return
	}
	user, err := h.users.SetImage(r.Context(), userID, "/api/users/"+userID+"/avatar")
	if err != nil {
		httpx.WriteError(w, r, h.log, "set avatar", err, "user not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

// Avatar streams a user's avatar image.
func (h *Handler) Avatar(w http.ResponseWriter, r *http.Request) {
	if h.avatars == nil {
		httpx.Error(w, http.StatusNotFound, "avatar not found")
		return
	}
	data, ct, err := h.avatars.Download(r.Context(), avatarKey(chi.URLParam(r, "id")))
	if err != nil {
		httpx.WriteError(w, r, h.log, "download avatar", err, "avatar not found")
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(data)
}
