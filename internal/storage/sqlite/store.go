package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/sqlc-dev/pqtype"

	"github.com/felixgeelhaar/wanderlist/internal/auth"
	"github.com/felixgeelhaar/wanderlist/internal/bucket"
	"github.com/felixgeelhaar/wanderlist/internal/domain"
	"github.com/felixgeelhaar/wanderlist/internal/flights"
)

// Store implements the auth, bucket and flight repositories over SQLite.
type Store struct {
	db *DB
}

// NewStore creates a store over an open database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

var (
	_ auth.Repository    = (*Store)(nil)
	_ bucket.Repository  = (*Store)(nil)
	_ flights.Repository = (*Store)(nil)
)

// GetUserByUsername returns the user, or nil when the username is unknown.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, username, password_hash, bucket_id, created_at FROM users WHERE username = ?`
	row := s.db.QueryRowContext(ctx, query, username)

	var user domain.User
	var id, bucketID string
	err := row.Scan(&id, &user.Username, &user.PasswordHash, &bucketID, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if user.BucketID, err = uuid.Parse(bucketID); err != nil {
		return nil, fmt.Errorf("parse bucket id: %w", err)
	}
	return &user, nil
}

// CreateUserWithBucket writes the user and their empty bucket in one
// transaction so neither is ever observable without the other.
func (s *Store) CreateUserWithBucket(ctx context.Context, user *domain.User, list *domain.BucketList) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, bucket_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID.String(), user.Username, user.PasswordHash, user.BucketID.String(), user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	items, err := marshalItems(list.Items)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO buckets (id, version, items) VALUES (?, ?, ?)`,
		list.ID.String(), list.Version, items,
	)
	if err != nil {
		return fmt.Errorf("insert bucket: %w", err)
	}

	return tx.Commit()
}

// GetBucket returns the bucket document, or domain.ErrBucketNotFound.
func (s *Store) GetBucket(ctx context.Context, id uuid.UUID) (*domain.BucketList, error) {
	query := `SELECT id, version, items FROM buckets WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id.String())

	var rawID string
	var items pqtype.NullRawMessage
	list := &domain.BucketList{}
	err := row.Scan(&rawID, &list.Version, &items)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBucketNotFound
	}
	if err != nil {
		return nil, err
	}

	if list.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse bucket id: %w", err)
	}
	if list.Items, err = unmarshalItems(items); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateBucket writes the document guarded by a compare-and-swap on the
// version column.
func (s *Store) UpdateBucket(ctx context.Context, list *domain.BucketList) error {
	items, err := marshalItems(list.Items)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE buckets SET items = ?, version = version + 1 WHERE id = ? AND version = ?`,
		items, list.ID.String(), list.Version,
	)
	if err != nil {
		return fmt.Errorf("update bucket: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either the bucket is gone or another writer committed first.
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM buckets WHERE id = ?`, list.ID.String()).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check bucket: %w", err)
		}
		if exists == 0 {
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

	raw := pqtype.NullRawMessage{RawMessage: record.Raw, Valid: len(record.Raw) > 0}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flights (id, origin, destination, departure_date, price, raw, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID.String(), record.Origin, record.Destination, record.DepartureDate,
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
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, origin, destination, departure_date, price, raw, created_at
		 FROM flights WHERE (? = '' OR origin = ?) ORDER BY created_at DESC`, origin, origin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.FlightRecord
	for rows.Next() {
		var rec domain.FlightRecord
		var id string
		var raw pqtype.NullRawMessage
		if err := rows.Scan(&id, &rec.Origin, &rec.Destination, &rec.DepartureDate, &rec.Price, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse flight id: %w", err)
		}
		if raw.Valid {
			rec.Raw = raw.RawMessage
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func marshalItems(items []domain.BucketListItem) (pqtype.NullRawMessage, error) {
	if items == nil {
		items = []domain.BucketListItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("marshal items: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}, nil
}

func unmarshalItems(raw pqtype.NullRawMessage) ([]domain.BucketListItem, error) {
	items := []domain.BucketListItem{}
	if !raw.Valid || len(raw.RawMessage) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw.RawMessage, &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
