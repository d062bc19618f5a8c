package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/store"
	"github.com/aussiebroadwan/cinedash/pkg/idx"
)

type entryKey struct {
	client idx.ID
	key    string
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Store keeps client storage in process memory. Data is lost on restart,
// which is fine for development and tests.
type Store struct {
	mu      sync.RWMutex
	entries map[entryKey]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ store.ClientStorage = (*Store)(nil)

// NewStore returns an empty store. A ttl of zero uses store.DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = store.DefaultTTL
	}
	return &Store{
		entries: make(map[entryKey]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Get(ctx context.Context, clientID idx.ID, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	e, ok := s.entries[entryKey{clientID, key}]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return "", store.ErrNotFound
	}
	return e.value, nil
}

func (s *Store) Set(ctx context.Context, clientID idx.ID, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entryKey{clientID, key}] = entry{
		value:     value,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, clientID idx.ID, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, entryKey{clientID, key})
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }
