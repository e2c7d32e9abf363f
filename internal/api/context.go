package api

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// contextKeyBucket carries the bucket id resolved from the session cookie.
const contextKeyBucket contextKey = "bucket_id"

// ContextWithBucket binds a bucket id to the request context.
func ContextWithBucket(ctx context.Context, bucketID uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKeyBucket, bucketID)
}

// BucketFromContext returns the bucket id injected by the session middleware.
func BucketFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKeyBucket).(uuid.UUID)
	return id, ok
}
