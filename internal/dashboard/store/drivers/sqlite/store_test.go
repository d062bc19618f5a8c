package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/store"
	"github.com/aussiebroadwan/cinedash/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "cinedash.db"))
	s, err := NewStore(dsn, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestMigrations(t *testing.T) {
	s := newTestStore(t, time.Hour)

	// Applying twice is a no-op.
	require.NoError(t, s.ApplyMigrations())

	version, dirty, err := s.MigrationVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Hour)
	id := idx.New()

	_, err := s.Get(ctx, id, "access_token")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, id, "access_token", "first"))
	require.NoError(t, s.Set(ctx, id, "access_token", "second"))

	v, err := s.Get(ctx, id, "access_token")
	require.NoError(t, err)
	require.Equal(t, "second", v)

	_, err = s.Get(ctx, idx.New(), "access_token")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Delete(ctx, id, "access_token"))
	_, err = s.Get(ctx, id, "access_token")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Ping(ctx))
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Minute)

	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	expired, fresh := idx.New(), idx.New()
	require.NoError(t, s.Set(ctx, expired, "access_token", "old"))

	now = now.Add(2 * time.Minute)
	require.NoError(t, s.Set(ctx, fresh, "access_token", "new"))

	_, err := s.Get(ctx, expired, "access_token")
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	v, err := s.Get(ctx, fresh, "access_token")
	require.NoError(t, err)
	require.Equal(t, "new", v)
}
