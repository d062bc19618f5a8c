package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/store"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/store/drivers/memory"
	"github.com/aussiebroadwan/cinedash/pkg/idx"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingPurgesExpired(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore(time.Millisecond)
	id := idx.New()
	require.NoError(t, storage.Set(ctx, id, TokenKey, "sealed"))

	time.Sleep(5 * time.Millisecond)

	h := NewHousekeepingService(storage, slogx.Discard(), time.Hour)
	h.Start()
	h.Stop()

	n, err := storage.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, n, "startup cleanup should already have removed the entry")

	_, err = storage.Get(ctx, id, TokenKey)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingDefaultInterval(t *testing.T) {
	h := NewHousekeepingService(memory.NewStore(0), slogx.Discard(), 0)
	require.Equal(t, time.Hour, h.Interval)
}
