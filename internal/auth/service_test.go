package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
	"github.com/felixgeelhaar/wanderlist/internal/session"
)

// mockRepo implements Repository backed by a map
type mockRepo struct {
	users   map[string]*domain.User
	buckets map[string]*domain.BucketList
	err     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:   make(map[string]*domain.User),
		buckets: make(map[string]*domain.BucketList),
	}
}

func (m *mockRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users[username], nil
}

func (m *mockRepo) CreateUserWithBucket(ctx context.Context, user *domain.User, bucket *domain.BucketList) error {
	if m.err != nil {
		return m.err
	}
	if _, exists := m.users[user.Username]; exists {
		return domain.ErrUsernameTaken
	}
	m.users[user.Username] = user
	m.buckets[bucket.ID.String()] = bucket
	return nil
}

func setupService(t *testing.T) (*Service, *mockRepo, *session.Store) {
	t.Helper()
	repo := newMockRepo()
	sessions := session.NewStore()
	return NewService(repo, sessions), repo, sessions
}

func TestService_Register(t *testing.T) {
	svc, repo, sessions := setupService(t)

	result, err := svc.Register(context.Background(), "amelia", "correct horse battery")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user := repo.users["amelia"]
	if user == nil {
		t.Fatal("user was not persisted")
	}
	if user.BucketID != result.BucketID {
		t.Error("result bucket id must match the user's bucket")
	}

	// user and bucket land together
	bucket := repo.buckets[result.BucketID.String()]
	if bucket == nil {
		t.Fatal("bucket was not created with the user")
	}
	if len(bucket.Items) != 0 {
		t.Error("new bucket must be empty")
	}

	// password is stored hashed, not verbatim
	if user.PasswordHash == "correct horse battery" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	// registration opens a session bound to the bucket
	bucketID, err := sessions.Resolve(result.Token)
	if err != nil {
		t.Fatalf("resolve session: %v", err)
	}
	if bucketID != result.BucketID {
		t.Error("session must resolve to the new bucket")
	}
}

func TestService_RegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "amelia", "first"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "amelia", "second"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestService_Login(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "amelia", "correct horse battery")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid credentials", "amelia", "correct horse battery", nil},
		{"wrong password", "amelia", "wrong", domain.ErrInvalidCredentials},
		{"unknown username", "nobody", "correct horse battery", domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Login(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if result.BucketID != reg.BucketID {
				t.Error("login must resolve the registered bucket")
			}
		})
	}
}

func TestService_LoginKeepsPriorSessions(t *testing.T) {
	svc, _, sessions := setupService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "amelia", "pw12345678")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(ctx, "amelia", "pw12345678")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if reg.Token == login.Token {
		t.Error("each login must mint a fresh token")
	}
	for _, token := range []string{reg.Token, login.Token} {
		if _, err := sessions.Resolve(token); err != nil {
			t.Errorf("token %q should still resolve: %v", token, err)
		}
	}
}
