package auth

import (
	"context"
	"net/http"
)

type contextKey int

const usernameKey contextKey = iota

// UsernameFromContext extracts the logged-in username from the request
// context. Empty when the request is anonymous.
func UsernameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(usernameKey).(string); ok {
		return v
	}
	return ""
}

// WithUsername returns a context carrying the logged-in username.
// Exposed for handler tests.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// Middleware resolves the session cookie to a username and injects it
// into the request context. Requests without a valid session are
// rejected with 401 before reaching the handler.
func Middleware(sessions *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err != nil {
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			username := sessions.Resolve(c.Value)
			if username == "" {
				http.Error(w, `{"error":"session expired"}`, http.StatusUnauthorized)
				return
			}

			ctx := WithUsername(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
