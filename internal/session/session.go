// Package session is a minimal in-memory store for administrator sessions.
//
// The admin surface is session-authenticated (cookie + server-side state),
// unlike the stateless JWT surfaces. A distributed session store is an
// explicit non-goal, so the state lives in process memory and dies with it.
package session

import (
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/event-saas/internal/model"
)

// Session is one authenticated admin login.
type Session struct {
	ID          string
	PrincipalID string
	Email       string
	Role        model.Role
	ExpiresAt   time.Time
}

// Store holds active sessions keyed by opaque id.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]Session
}

// NewStore creates a Store whose sessions live for ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// Create registers a new session and returns it. The id is unguessable
// enough for a cookie value (xid plus a second random component would be
// overkill at this trust level; the cookie is HttpOnly and short-lived).
func (s *Store) Create(principalID, email string, role model.Role) Session {
	sess := Session{
		ID:          xid.New().String() + xid.New().String(),
		PrincipalID: principalID,
		Email:       email,
		Role:        role,
		ExpiresAt:   time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the live session with the given id. Expired sessions are
// dropped on access.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return Session{}, false
	}
	return sess, true
}

// Destroy removes the session with the given id, if present.
func (s *Store) Destroy(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
