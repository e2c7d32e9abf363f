package bucket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
)

// memRepo is an in-memory Repository with compare-and-swap semantics.
type memRepo struct {
	mu      sync.Mutex
	buckets map[uuid.UUID]*domain.BucketList

	// conflictsBeforeCommit forces the next n updates to fail with a
	// version conflict, for exercising the retry loop.
	conflictsBeforeCommit int
}

func newMemRepo() *memRepo {
	return &memRepo{buckets: make(map[uuid.UUID]*domain.BucketList)}
}

func (m *memRepo) put(b *domain.BucketList) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[b.ID] = b.Clone()
}

func (m *memRepo) GetBucket(ctx context.Context, id uuid.UUID) (*domain.BucketList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[id]
	if !ok {
		return nil, domain.ErrBucketNotFound
	}
	return b.Clone(), nil
}

func (m *memRepo) UpdateBucket(ctx context.Context, bucket *domain.BucketList) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.buckets[bucket.ID]
	if !ok {
		return domain.ErrBucketNotFound
	}
	if m.conflictsBeforeCommit > 0 {
		m.conflictsBeforeCommit--
		return domain.ErrVersionConflict
	}
	if current.Version != bucket.Version {
		return domain.ErrVersionConflict
	}

	stored := bucket.Clone()
	stored.Version++
	m.buckets[bucket.ID] = stored
	bucket.Version = stored.Version
	return nil
}

func setupService(t *testing.T) (*Service, *memRepo, uuid.UUID) {
	t.Helper()
	repo := newMemRepo()
	bucketID := uuid.New()
	repo.put(domain.NewBucketList(bucketID))
	return NewService(repo), repo, bucketID
}

func TestService_Get(t *testing.T) {
	svc, _, bucketID := setupService(t)

	b, err := svc.Get(context.Background(), bucketID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.ID != bucketID || len(b.Items) != 0 {
		t.Errorf("unexpected bucket: %+v", b)
	}

	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, domain.ErrBucketNotFound) {
		t.Errorf("expected ErrBucketNotFound, got %v", err)
	}
}

func TestService_AddItem(t *testing.T) {
	svc, _, bucketID := setupService(t)
	ctx := context.Background()

	updated, item, err := svc.AddItem(ctx, bucketID, "ride the Trans-Siberian")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.Description != "ride the Trans-Siberian" || item.Completed {
		t.Errorf("unexpected item: %+v", item)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(updated.Items))
	}

	// visible through a fresh read, with a distinct id per item
	_, second, err := svc.AddItem(ctx, bucketID, "ride it back")
	if err != nil {
		t.Fatalf("add second item: %v", err)
	}
	if second.ID == item.ID {
		t.Error("item ids must be distinct")
	}

	b, err := svc.Get(ctx, bucketID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(b.Items) != 2 || b.Items[0].ID != item.ID || b.Items[1].ID != second.ID {
		t.Errorf("persisted items out of order: %+v", b.Items)
	}
}

func TestService_AddItemMissingBucket(t *testing.T) {
	svc, _, _ := setupService(t)

	if _, _, err := svc.AddItem(context.Background(), uuid.New(), "x"); !errors.Is(err, domain.ErrBucketNotFound) {
		t.Errorf("expected ErrBucketNotFound, got %v", err)
	}
}

func TestService_SetItemCompletedIdempotent(t *testing.T) {
	svc, _, bucketID := setupService(t)
	ctx := context.Background()

	_, item, err := svc.AddItem(ctx, bucketID, "see a total eclipse")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	for i := 0; i < 2; i++ {
		updated, err := svc.SetItemCompleted(ctx, bucketID, item.ID, true)
		if err != nil {
			t.Fatalf("set completed (call %d): %v", i+1, err)
		}
		got, ok := updated.Item(item.ID)
		if !ok || !got.Completed {
			t.Errorf("call %d: expected completed item, got %+v", i+1, got)
		}
	}

	if _, err := svc.SetItemCompleted(ctx, bucketID, uuid.New(), true); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestService_DeleteItem(t *testing.T) {
	svc, _, bucketID := setupService(t)
	ctx := context.Background()

	_, a, _ := svc.AddItem(ctx, bucketID, "a")
	_, b, _ := svc.AddItem(ctx, bucketID, "b")
	_, c, _ := svc.AddItem(ctx, bucketID, "c")

	updated, err := svc.DeleteItem(ctx, bucketID, b.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(updated.Items) != 2 || updated.Items[0].ID != a.ID || updated.Items[1].ID != c.ID {
		t.Errorf("unexpected items after delete: %+v", updated.Items)
	}

	// deleting an unknown item must not disturb the sequence
	if _, err := svc.DeleteItem(ctx, bucketID, uuid.New()); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	after, err := svc.Get(ctx, bucketID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(after.Items) != 2 || after.Items[0].ID != a.ID || after.Items[1].ID != c.ID {
		t.Errorf("failed delete changed the sequence: %+v", after.Items)
	}
}

func TestService_UpdateRetriesOnConflict(t *testing.T) {
	svc, repo, bucketID := setupService(t)
	repo.conflictsBeforeCommit = 3

	if _, _, err := svc.AddItem(context.Background(), bucketID, "persistent"); err != nil {
		t.Fatalf("add item should survive transient conflicts: %v", err)
	}

	b, _ := svc.Get(context.Background(), bucketID)
	if len(b.Items) != 1 {
		t.Errorf("expected exactly one committed item, got %d", len(b.Items))
	}
}

func TestService_ConcurrentAddItem(t *testing.T) {
	svc, _, bucketID := setupService(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, _, err := svc.AddItem(ctx, bucketID, fmt.Sprintf("item-%d", n)); err != nil {
				t.Errorf("concurrent add %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	b, err := svc.Get(ctx, bucketID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(b.Items) != writers {
		t.Fatalf("expected %d items, got %d (lost update)", writers, len(b.Items))
	}

	seen := make(map[string]bool)
	for _, item := range b.Items {
		seen[item.Description] = true
	}
	for i := 0; i < writers; i++ {
		if !seen[fmt.Sprintf("item-%d", i)] {
			t.Errorf("item-%d was dropped", i)
		}
	}
}
