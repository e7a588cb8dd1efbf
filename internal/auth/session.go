package auth

import (
	"sync"

	"cartable/internal/domain/models/pedagogy"
)

// Session holds the current bearer token and the user it belongs to.
// It implements services.TokenSource and is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *pedagogy.User
}

// NewSession creates a session; both arguments may be empty.
func NewSession(token string, user *pedagogy.User) *Session {
	return &Session{token: token, user: user}
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the logged-in user, or nil.
func (s *Session) User() *pedagogy.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UserID returns the logged-in user's id, or "".
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID.String()
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken replaces the token, keeping the user.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Set replaces token and user together.
func (s *Session) Set(token string, user *pedagogy.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

// Clear logs the session out.
func (s *Session) Clear() {
	s.Set("", nil)
}
