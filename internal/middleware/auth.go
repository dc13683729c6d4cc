package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/inhome/registry/internal/auth"
)

type contextKey string

const usernameKey contextKey = "username"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// SessionTokenHeader is the header alternative to the session cookie.
const SessionTokenHeader = "X-Session-Token"

// SessionMiddleware validates the session token from the request and
// attaches the authenticated username to the context. Requests without a
// valid session are rejected with 401.
func SessionMiddleware(sessions *auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				respondWithError(w, http.StatusUnauthorized, "missing session token")
				return
			}

			username, ok := sessions.Validate(token)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionToken extracts the token from the X-Session-Token header or the
// session cookie, in that order.
func sessionToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(SessionTokenHeader)); token != "" {
		return token
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

// GetUsername returns the username attached by SessionMiddleware.
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := map[string]string{"error": message}
	_ = json.NewEncoder(w).Encode(response)
}
