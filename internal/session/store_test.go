package session

import (
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/skribb-ai/backend/internal/model"
)

func testUser() model.User {
	return model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	u := testUser()

	token, err := s.Create(u)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}

	sess, ok := s.Get(token)
	if !ok {
		t.Fatalf("Get: session not found")
	}
	if sess.UserID != u.ID || sess.Username != u.Username || sess.Email != u.Email {
		t.Fatalf("session snapshot mismatch: %+v", sess)
	}

	s.Delete(token)
	if _, ok := s.Get(token); ok {
		t.Fatalf("session survived Delete")
	}
}

func TestMemoryStore_DeleteIdempotent(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	// Never-issued and empty tokens must not panic or error.
	s.Delete("no-such-token")
	s.Delete("no-such-token")
	s.Delete("")

	token, err := s.Create(testUser())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.Delete(token)
	s.Delete(token)
	if s.Len() != 0 {
		t.Fatalf("Len=%d, want 0", s.Len())
	}
}

func TestMemoryStore_GetMissHasNoSideEffect(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	if _, ok := s.Get(""); ok {
		t.Fatalf("empty token resolved")
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("missing token resolved")
	}
	if s.Len() != 0 {
		t.Fatalf("miss created an entry")
	}
}

func TestMemoryStore_GetTouchesLastAccessed(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	token, err := s.Create(testUser())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	mu.Lock()
	clock = clock.Add(5 * time.Minute)
	mu.Unlock()

	sess, ok := s.Get(token)
	if !ok {
		t.Fatalf("Get miss")
	}
	if !sess.LastAccessed.Equal(clock) {
		t.Fatalf("LastAccessed=%v, want %v", sess.LastAccessed, clock)
	}
	if !sess.CreatedAt.Equal(clock.Add(-5 * time.Minute)) {
		t.Fatalf("CreatedAt moved: %v", sess.CreatedAt)
	}
}

func TestMemoryStore_TokensAreUnique(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	u := testUser()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := s.Create(u)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[token] {
			t.Fatalf("token reused: %s", token)
		}
		seen[token] = true
	}
	if s.Len() != 100 {
		t.Fatalf("Len=%d, want 100", s.Len())
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	u := testUser()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				token, err := s.Create(u)
				if err != nil {
					t.Errorf("Create: %v", err)
					return
				}
				if _, ok := s.Get(token); !ok {
					t.Errorf("Get miss right after Create")
					return
				}
				s.Delete(token)
			}
		}()
	}
	wg.Wait()

	if s.Len() != 0 {
		t.Fatalf("Len=%d after balanced create/delete, want 0", s.Len())
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	stale, err := s.Create(testUser())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	mu.Lock()
	clock = clock.Add(2 * time.Hour)
	mu.Unlock()

	fresh, err := s.Create(testUser())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// ttl<=0 means expiry is disabled.
	if n := s.Sweep(0); n != 0 {
		t.Fatalf("Sweep(0)=%d, want 0", n)
	}

	if n := s.Sweep(time.Hour); n != 1 {
		t.Fatalf("Sweep=%d, want 1", n)
	}
	if _, ok := s.Get(stale); ok {
		t.Fatalf("stale session survived sweep")
	}
	if _, ok := s.Get(fresh); !ok {
		t.Fatalf("fresh session evicted")
	}
}
