package httpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewLimiter(Limit{Name: "t", Requests: 1, Window: time.Minute, Burst: 1})
	l.now = func() time.Time { return now }
	l.lastSweep = now

	ok, _ := l.Allow("a")
	require.True(t, ok)
	ok, wait := l.Allow("a")
	require.False(t, ok)
	require.InDelta(t, time.Minute.Seconds(), wait.Seconds(), 1)

	now = now.Add(90 * time.Second)
	ok, _ = l.Allow("b")
	require.True(t, ok)
	require.Equal(t, 2, l.Len())

	// a has been idle for the full idle timeout, b has not.
	now = now.Add(40 * time.Second)
	ok, _ = l.Allow("b")
	require.False(t, ok)
	require.Equal(t, 1, l.Len())
}

func TestLimitEvery(t *testing.T) {
	require.Equal(t, rate.Limit(0.5), Limit{Requests: 30, Window: time.Minute}.Every())
	require.Equal(t, rate.Inf, Limit{Requests: 0, Window: time.Minute}.Every())
}
