package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayush/blog-app/backend/internal/auth"
)

type fakeSessions struct {
	users map[string]string
	err   error
}

func (f *fakeSessions) Get(_ context.Context, sid string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.users[sid], nil
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(auth.UserID(r.Context())))
	})
}

func TestRequireAuth(t *testing.T) {
	sessions := &fakeSessions{users: map[string]string{"sid-1": "user-1"}}

	tests := []struct {
		name   string
		cookie *http.Cookie
		store  *fakeSessions
		status int
		body   string
	}{
		{"no cookie", nil, sessions, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"unknown session", &http.Cookie{Name: auth.SessionCookie, Value: "nope"}, sessions, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"store failure", &http.Cookie{Name: auth.SessionCookie, Value: "sid-1"}, &fakeSessions{err: errors.New("redis down")}, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"valid session", &http.Cookie{Name: auth.SessionCookie, Value: "sid-1"}, sessions, http.StatusOK, "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()

			RequireAuth(tt.store)(echoUser()).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			} else {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}
