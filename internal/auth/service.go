// Package auth registers and authenticates users. Each new account is
// provisioned with an empty bucket list in the same storage transaction, so
// a user without a bucket is never observable.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
	"github.com/felixgeelhaar/wanderlist/internal/session"
)

// Repository defines the interface for auth data access.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// CreateUserWithBucket persists the user and their empty bucket as a
	// single transactional write. It fails with domain.ErrUsernameTaken when
	// the username is already registered.
	CreateUserWithBucket(ctx context.Context, user *domain.User, bucket *domain.BucketList) error
}

// dummyHash is compared against when the username is unknown so login takes
// the same time whether the user exists or not.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("wanderlist-dummy"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// Service handles registration and login.
type Service struct {
	repo       Repository
	sessions   *session.Store
	bcryptCost int
}

// NewService creates a new auth service.
func NewService(repo Repository, sessions *session.Store) *Service {
	return &Service{
		repo:       repo,
		sessions:   sessions,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Result is the outcome of a successful registration or login.
type Result struct {
	UserID   uuid.UUID
	BucketID uuid.UUID
	Token    string
}

// Register creates a new user with an empty bucket and opens a session.
// Fails with domain.ErrUsernameTaken when the username exists.
func (s *Service) Register(ctx context.Context, username, password string) (*Result, error) {
	existing, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		BucketID:     uuid.New(),
		CreatedAt:    time.Now(),
	}
	bucket := domain.NewBucketList(user.BucketID)

	if err := s.repo.CreateUserWithBucket(ctx, user, bucket); err != nil {
		return nil, err
	}

	token, err := s.sessions.Create(user.BucketID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	return &Result{UserID: user.ID, BucketID: user.BucketID, Token: token}, nil
}

// Login authenticates a user and opens a new session. Prior sessions for the
// same user stay valid. Fails with domain.ErrInvalidCredentials on an unknown
// username or a mismatched password.
func (s *Service) Login(ctx context.Context, username, password string) (*Result, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if user == nil {
		// burn the same bcrypt work as a real comparison
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(user.BucketID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	return &Result{UserID: user.ID, BucketID: user.BucketID, Token: token}, nil
}
