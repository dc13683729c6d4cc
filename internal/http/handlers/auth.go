package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/inhome/registry/internal/auth"
	"github.com/inhome/registry/internal/middleware"
)

// AuthHandler handles account creation and login.
type AuthHandler struct {
	credentials  *auth.Credentials
	sessions     *auth.SessionStore
	loginLimiter *middleware.RateLimiter
}

// NewAuthHandler creates a new auth handler. Login attempts are
// IP rate-limited to slow down credential guessing.
func NewAuthHandler(credentials *auth.Credentials, sessions *auth.SessionStore) *AuthHandler {
	return &AuthHandler{
		credentials:  credentials,
		sessions:     sessions,
		loginLimiter: middleware.NewRateLimiter(10*time.Minute, 20),
	}
}

// credentialsRequest is the request body for signup and login
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the JSON response for a successful login
type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "username and password are required")
		return req, false
	}
	return req, true
}

// HandleSignup handles POST /auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	created, err := h.credentials.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, "signup", err)
		return
	}
	if !created {
		respondWithError(w, http.StatusBadRequest, "user already exists")
		return
	}

	log.Printf("new user was created: %s", req.Username)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "user created"})
}

// HandleLogin handles POST /auth/login. The response is identical for
// unknown usernames and wrong passwords.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if !h.loginLimiter.Allow(middleware.GetIPKey(r)) {
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	valid, err := h.credentials.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, "login", err)
		return
	}
	if !valid {
		respondWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := h.sessions.Issue(req.Username)
	ttl := h.sessions.TTL()

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	respondWithJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
	})
}
