package dashboard_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/apitest"
	dashhttp "github.com/aussiebroadwan/cinedash/internal/dashboard/http"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/service"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/store"
	redisstore "github.com/aussiebroadwan/cinedash/internal/dashboard/store/drivers/redis"
	"github.com/aussiebroadwan/cinedash/pkg/cryptox"
	"github.com/aussiebroadwan/cinedash/pkg/httpx"
	"github.com/aussiebroadwan/cinedash/pkg/idx"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests for the redis client storage driver against a real Redis
 * started with testcontainers. Requires a working Docker daemon.
 */

const redisImage = "redis:7-alpine"

// setupRedisContainer starts Redis and returns its address.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mappedPort.Port())
}

func connect(t *testing.T, addr string, ttl time.Duration) *redisstore.Store {
	t.Helper()

	s, err := redisstore.Connect(t.Context(), redisstore.Config{Addr: addr, TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisStore(t *testing.T) {
	addr := setupRedisContainer(t)
	s := connect(t, addr, time.Hour)
	ctx := t.Context()

	clientID := idx.New()

	_, err := s.Get(ctx, clientID, "access_token")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, clientID, "access_token", "sealed-value"))

	v, err := s.Get(ctx, clientID, "access_token")
	require.NoError(t, err)
	require.Equal(t, "sealed-value", v)

	// Another browser never sees the value.
	_, err = s.Get(ctx, idx.New(), "access_token")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Keys carry a native TTL.
	raw := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = raw.Close() })

	ttl, err := raw.TTL(ctx, "cinedash:client:"+clientID.String()+":access_token").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, 59*time.Minute)

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, s.Delete(ctx, clientID, "access_token"))
	_, err = s.Get(ctx, clientID, "access_token")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Ping(ctx))
}

func TestRedisStoreExpiry(t *testing.T) {
	addr := setupRedisContainer(t)
	s := connect(t, addr, time.Second)
	ctx := t.Context()

	clientID := idx.New()
	require.NoError(t, s.Set(ctx, clientID, "access_token", "short-lived"))

	require.Eventually(t, func() bool {
		_, err := s.Get(ctx, clientID, "access_token")
		return errors.Is(err, store.ErrNotFound)
	}, 5*time.Second, 100*time.Millisecond)
}

func TestConnectFailsWithoutRedis(t *testing.T) {
	_, err := redisstore.Connect(context.Background(), redisstore.Config{
		Addr:    "127.0.0.1:1",
		Timeout: 500 * time.Millisecond,
	})
	require.Error(t, err)
}

// TestDashboardFlowOnRedis logs in through the web layer and checks the
// session survives a second router sharing the same Redis, as it would
// across a rolling restart.
func TestDashboardFlowOnRedis(t *testing.T) {
	addr := setupRedisContainer(t)
	catalog := apitest.NewServer(t)

	sealer, err := cryptox.NewSealer([]byte("e2e-master-key"))
	require.NoError(t, err)

	newServer := func() *httptest.Server {
		router, err := dashhttp.NewRouter("e2e", connect(t, addr, time.Hour), sealer, httpx.ClientCookieConfig{}, slogx.Discard())
		require.NoError(t, err)

		client := catalog.Client()
		router.DashboardService = &service.DashboardService{Guard: &service.Guard{Client: client}}
		router.AuthService = service.NewAuthService(client)
		router.ApplyRoutes()

		srv := httptest.NewServer(router)
		t.Cleanup(srv.Close)
		return srv
	}

	first := newServer()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := browser.PostForm(first.URL+"/login", url.Values{
		"username": {"carol"},
		"password": {"Critic123!"},
	})
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// Carry the client cookie over to the second server.
	second := newServer()
	firstURL, _ := url.Parse(first.URL)
	secondURL, _ := url.Parse(second.URL)
	jar.SetCookies(secondURL, jar.Cookies(firstURL))

	resp, err = browser.Get(second.URL + "/api/v1/dashboard/critic")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
