// Package session implements the in-process store that maps opaque bearer
// tokens to authenticated sessions. Sessions are never persisted: a process
// restart invalidates every token.
package session

import (
	"sync"
	"time"

	"github.com/skribb-ai/backend/internal/crypto"
	"github.com/skribb-ai/backend/internal/model"
)

// Store is the session lifecycle consumed by the auth service and middleware.
// Implementations must be safe for concurrent use.
type Store interface {
	// Create issues a fresh token for the given user snapshot.
	Create(user model.User) (string, error)
	// Get resolves a token, refreshing the session's last-accessed time.
	// The second result is false for a missing or empty token.
	Get(token string) (model.Session, bool)
	// Delete removes the session if present. Idempotent: deleting an unknown
	// or empty token is not an error.
	Delete(token string)
}

// MemoryStore is the default single-process Store backed by a mutex-guarded map.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session

	now func() time.Time // injectable clock for tests
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.Session),
		now:      time.Now,
	}
}

// Create issues a token with 256 bits of entropy and records the session.
func (s *MemoryStore) Create(user model.User) (string, error) {
	token, err := crypto.NewToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	sess := model.Session{
		Token:        token,
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		CreatedAt:    now,
		LastAccessed: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// 256-bit tokens do not collide in practice; the check keeps the
	// "token maps to at most one session" invariant explicit.
	for {
		if _, exists := s.sessions[token]; !exists {
			break
		}
		token, err = crypto.NewToken()
		if err != nil {
			return "", err
		}
		sess.Token = token
	}
	s.sessions[token] = sess
	return token, nil
}

// Get looks up a token. On a hit the stored record is replaced with a copy
// carrying a refreshed LastAccessed; a miss has no side effect.
func (s *MemoryStore) Get(token string) (model.Session, bool) {
	if token == "" {
		return model.Session{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return model.Session{}, false
	}
	sess.LastAccessed = s.now()
	s.sessions[token] = sess
	return sess, true
}

// Delete removes the session for token, if any.
func (s *MemoryStore) Delete(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than ttl and reports how many were
// evicted. The store enforces no expiry on its own; callers opt in by running
// StartSweeper.
func (s *MemoryStore) Sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, sess := range s.sessions {
		if sess.LastAccessed.Before(cutoff) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until stop is closed.
func (s *MemoryStore) StartSweeper(ttl, interval time.Duration, stop <-chan struct{}) {
	if ttl <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.Sweep(ttl)
			case <-stop:
				return
			}
		}
	}()
}
