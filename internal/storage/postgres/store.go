package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/wanderlist/internal/auth"
	"github.com/felixgeelhaar/wanderlist/internal/bucket"
	"github.com/felixgeelhaar/wanderlist/internal/domain"
	"github.com/felixgeelhaar/wanderlist/internal/flights"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// Store implements the auth, bucket and flight repositories over PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store over an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var (
	_ auth.Repository    = (*Store)(nil)
	_ bucket.Repository  = (*Store)(nil)
	_ flights.Repository = (*Store)(nil)
)

// GetUserByUsername returns the user, or nil when the username is unknown.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, username, password_hash, bucket_id, created_at FROM users WHERE username = $1`

	user := &domain.User{}
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.BucketID, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUserWithBucket writes the user and their empty bucket in one
// transaction so neither is ever observable without the other.
func (s *Store) CreateUserWithBucket(ctx context.Context, user *domain.User, list *domain.BucketList) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, bucket_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.PasswordHash, user.BucketID, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	items, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO buckets (id, version, items) VALUES ($1, $2, $3)`,
		list.ID, list.Version, items,
	)
	if err != nil {
		return fmt.Errorf("insert bucket: %w", err)
	}

	return tx.Commit(ctx)
}

// GetBucket returns the bucket document, or domain.ErrBucketNotFound.
func (s *Store) GetBucket(ctx context.Context, id uuid.UUID) (*domain.BucketList, error) {
	query := `SELECT id, version, items FROM buckets WHERE id = $1`

	list := &domain.BucketList{}
	var items []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&list.ID, &list.Version, &items)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBucketNotFound
	}
	if err != nil {
		return nil, err
	}

	list.Items = []domain.BucketListItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &list.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	return list, nil
}

// UpdateBucket writes the document guarded by a compare-and-swap on the
// version column.
func (s *Store) UpdateBucket(ctx context.Context, list *domain.BucketList) error {
	items, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE buckets SET items = $1, version = version + 1 WHERE id = $2 AND version = $3`,
		items, list.ID, list.Version,
	)
	if err != nil {
		return fmt.Errorf("update bucket: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM buckets WHERE id = $1)`, list.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check bucket: %w", err)
		}
		if !exists {
			return domain.ErrBucketNotFound
		}
		return domain.ErrVersionConflict
	}

	list.Version++
	return nil
}

// InsertFlight persists a flight record, assigning it a fresh identifier.
func (s *Store) InsertFlight(ctx context.Context, record *domain.FlightRecord) error {
	record.ID = uuid.New()

	var raw []byte
	if len(record.Raw) > 0 {
		raw = record.Raw
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO flights (id, origin, destination, departure_date, price, raw, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.Origin, record.Destination, record.DepartureDate,
		record.Price, raw, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}
	return nil
}

// ListFlights returns persisted records, newest first. An empty origin
// returns all records.
func (s *Store) ListFlights(ctx context.Context, origin string) ([]domain.FlightRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, origin, destination, departure_date, price, raw, created_at
		 FROM flights WHERE ($1 = '' OR origin = $1) ORDER BY created_at DESC`, origin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.FlightRecord
	for rows.Next() {
		var rec domain.FlightRecord
		var raw []byte
		if err := rows.Scan(&rec.ID, &rec.Origin, &rec.Destination, &rec.DepartureDate, &rec.Price, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			rec.Raw = json.RawMessage(raw)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
