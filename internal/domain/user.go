package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. A user owns exactly one bucket list,
// created together with the account.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	BucketID     uuid.UUID
	CreatedAt    time.Time
}
