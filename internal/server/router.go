package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/blog-app/backend/internal/auth"
	"github.com/ayush/blog-app/backend/internal/comments"
	"github.com/ayush/blog-app/backend/internal/middleware"
	"github.com/ayush/blog-app/backend/internal/posts"
)

// Deps are the handlers and middleware the router is assembled from.
type Deps struct {
	Auth        *auth.Handler
	Posts       *posts.Handler
	Comments    *comments.Handler
	Sessions    middleware.SessionResolver
	RateLimit   func(http.Handler) http.Handler // nil disables limiting
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	requireAuth := middleware.RequireAuth(d.Sessions)
	limit := d.RateLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(limit).Post("/register", d.Auth.Register)
		r.With(limit).Post("/login", d.Auth.Login)
		r.Post("/logout", d.Auth.Logout)
		r.With(requireAuth).Get("/me", d.Auth.Me)
		r.With(requireAuth, limit).Put("/me/avatar", d.Auth.UploadAvatar)
	})

	r.Get("/api/users/{id}/avatar", d.Auth.Avatar)

	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", d.Posts.List)
		r.With(requireAuth, limit).Post("/", d.Posts.Create)
		r.With(requireAuth).Get("/my-posts", d.Posts.Mine)

		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", d.Posts.Get)
			r.With(requireAuth, limit).Put("/", d.Posts.Update)
			r.With(requireAuth, limit).Delete("/", d.Posts.Delete)

			r.Get("/comments", d.Comments.List)
			r.With(requireAuth, limit).Post("/comments", d.Comments.Create)
		})
	})

	return r
}
