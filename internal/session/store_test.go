package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
)

func TestStore_CreateAndResolve(t *testing.T) {
	store := NewStore()
	bucketID := uuid.New()

	token, err := store.Create(bucketID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := store.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != bucketID {
		t.Errorf("resolve = %s, want %s", got, bucketID)
	}
}

func TestStore_ResolveUnknownToken(t *testing.T) {
	store := NewStore()

	for _, token := range []string{"", "not-a-token"} {
		if _, err := store.Resolve(token); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("Resolve(%q): expected ErrSessionNotFound, got %v", token, err)
		}
	}
}

func TestStore_TokensAreUnique(t *testing.T) {
	store := NewStore()
	bucketID := uuid.New()
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := store.Create(bucketID)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bucketID := uuid.New()
			token, err := store.Create(bucketID)
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			got, err := store.Resolve(token)
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			if got != bucketID {
				t.Errorf("resolve = %s, want %s", got, bucketID)
			}
		}()
	}
	wg.Wait()

	if store.Len() != 50 {
		t.Errorf("expected 50 sessions, got %d", store.Len())
	}
}
