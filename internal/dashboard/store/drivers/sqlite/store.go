package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/store"
	"github.com/aussiebroadwan/cinedash/pkg/idx"
	_ "modernc.org/sqlite"
)

// Store persists client storage in a SQLite database so logins survive a
// restart of the web process.
type Store struct {
	db  *sql.DB
	dsn string
	ttl time.Duration
	now func() time.Time
}

var _ store.ClientStorage = (*Store)(nil)

// NewStore opens the database at dsn. Call ApplyMigrations before use. A ttl
// of zero uses store.DefaultTTL.
func NewStore(dsn string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = store.DefaultTTL
	}

	return &Store{
		db:  db,
		dsn: dsn,
		ttl: ttl,
		now: time.Now,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Get(ctx context.Context, clientID idx.ID, key string) (string, error) {
	const q = `
SELECT value FROM client_storage
WHERE client_id = ? AND key = ? AND expires_at > ?`

	var value string
	err := s.db.QueryRowContext(ctx, q, clientID.String(), key, s.now().UnixMilli()).Scan(&value)
	if err != nil {
		return "", mapNotFound(err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, clientID idx.ID, key, value string) error {
	const q = `
INSERT INTO client_storage (client_id, key, value, expires_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (client_id, key) DO UPDATE SET
    value      = excluded.value,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`

	now := s.now()
	_, err := s.db.ExecContext(ctx, q,
		clientID.String(), key, value,
		now.Add(s.ttl).UnixMilli(), now.UnixMilli(),
	)
	return err
}

func (s *Store) Delete(ctx context.Context, clientID idx.ID, key string) error {
	const q = `DELETE FROM client_storage WHERE client_id = ? AND key = ?`

	_, err := s.db.ExecContext(ctx, q, clientID.String(), key)
	return err
}

func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM client_storage WHERE expires_at <= ?`

	res, err := s.db.ExecContext(ctx, q, s.now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
