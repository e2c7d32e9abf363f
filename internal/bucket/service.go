// Package bucket implements the operations on a user's bucket list. Every
// operation is a read-modify-write of the whole bucket document; updates are
// guarded by a compare-and-swap on the bucket version so racing mutations
// are retried instead of silently dropped.
package bucket

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
)

// updateAttempts bounds the compare-and-swap retry loop. Each conflict means
// another writer committed, so a writer can lose at most once per concurrent
// peer before the set drains.
const updateAttempts = 16

// Repository defines the interface for bucket data access.
type Repository interface {
	// GetBucket returns the bucket document, or domain.ErrBucketNotFound.
	GetBucket(ctx context.Context, id uuid.UUID) (*domain.BucketList, error)

	// UpdateBucket writes the document if the stored version still equals
	// bucket.Version, bumping the version on success. A stale version fails
	// with domain.ErrVersionConflict.
	UpdateBucket(ctx context.Context, bucket *domain.BucketList) error
}

// Service exposes the bucket list operations.
type Service struct {
	repo Repository
}

// NewService creates a new bucket service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the bucket with the given id.
func (s *Service) Get(ctx context.Context, bucketID uuid.UUID) (*domain.BucketList, error) {
	return s.repo.GetBucket(ctx, bucketID)
}

// AddItem appends a new incomplete item and returns the updated bucket along
// with the created item.
func (s *Service) AddItem(ctx context.Context, bucketID uuid.UUID, description string) (*domain.BucketList, domain.BucketListItem, error) {
	var added domain.BucketListItem
	updated, err := s.update(ctx, bucketID, func(b *domain.BucketList) error {
		added = b.AppendItem(description)
		return nil
	})
	if err != nil {
		return nil, domain.BucketListItem{}, err
	}
	return updated, added, nil
}

// SetItemCompleted sets the completed flag of the named item and returns the
// updated bucket. Idempotent for repeated identical values.
func (s *Service) SetItemCompleted(ctx context.Context, bucketID, itemID uuid.UUID, completed bool) (*domain.BucketList, error) {
	return s.update(ctx, bucketID, func(b *domain.BucketList) error {
		return b.SetItemCompleted(itemID, completed)
	})
}

// DeleteItem removes the named item, preserving the order of the remaining
// items, and returns the updated bucket.
func (s *Service) DeleteItem(ctx context.Context, bucketID, itemID uuid.UUID) (*domain.BucketList, error) {
	return s.update(ctx, bucketID, func(b *domain.BucketList) error {
		return b.RemoveItem(itemID)
	})
}

// update runs one read-modify-write cycle, retrying the read and the
// mutation when the compare-and-swap loses to a concurrent writer.
func (s *Service) update(ctx context.Context, bucketID uuid.UUID, mutate func(*domain.BucketList) error) (*domain.BucketList, error) {
	for attempt := 0; attempt < updateAttempts; attempt++ {
		current, err := s.repo.GetBucket(ctx, bucketID)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}

		err = s.repo.UpdateBucket(ctx, next)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return next, nil
	}
	return nil, fmt.Errorf("bucket %s: %w after %d attempts", bucketID, domain.ErrVersionConflict, updateAttempts)
}
