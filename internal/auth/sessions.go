package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = 15 * time.Minute

type session struct {
	username  string
	expiresAt time.Time
}

// SessionStore maps opaque tokens to authenticated usernames with a fixed
// time-to-live. Sessions live in process memory only and are lost on
// restart. Safe for concurrent use by many request handlers.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration
}

// NewSessionStore creates a session store and starts a background sweep
// that drops expired entries.
func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]session),
		ttl:      ttl,
	}
	go s.sweep()
	return s
}

// TTL returns the configured session lifetime.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Issue creates an opaque random token bound to the username.
func (s *SessionStore) Issue(username string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{
		username:  username,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return token
}

// Validate returns the username bound to the token. Unknown and expired
// tokens return false; expired ones are evicted on lookup.
func (s *SessionStore) Validate(token string) (string, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(sess.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return "", false
	}
	return sess.username, true
}

// Revoke drops a session immediately.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// sweep periodically removes expired sessions so abandoned tokens do not
// accumulate.
func (s *SessionStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for token, sess := range s.sessions {
			if now.After(sess.expiresAt) {
				delete(s.sessions, token)
			}
		}
		s.mu.Unlock()
	}
}
