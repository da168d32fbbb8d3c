package middleware

import (
	"context"
	"net/http"

	"github.com/ayush/blog-app/backend/internal/auth"
	"github.com/ayush/blog-app/backend/internal/httpx"
)

// SessionResolver maps a session id to a user id ("" when unknown or expired).
type SessionResolver interface {
	Get(ctx context.Context, sessionID string) (string, error)
}

// RequireAuth is middleware that validates the session cookie and
// injects the user id into the request context.
func RequireAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}
