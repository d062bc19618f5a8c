package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	return Config{
		CatalogBaseURL:       "http://127.0.0.1:1",
		CatalogTimeout:       time.Second,
		SessionPolicy:        PolicyStrict,
		StorageDriver:        DriverMemory,
		StorageTTL:           time.Hour,
		DatabaseFile:         filepath.Join(t.TempDir(), "cinedash.db"),
		Env:                  "dev",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 0,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestNewServesProbes(t *testing.T) {
	for _, driver := range []string{DriverMemory, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.StorageDriver = driver

			application, err := New(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = application.storage.Close() })

			for _, path := range []string{"/livez", "/readyz"} {
				rec := httptest.NewRecorder()
				application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				require.Equal(t, http.StatusOK, rec.Code, path)
			}
		})
	}
}

func TestNewLenientPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.SessionPolicy = PolicyLenient
	cfg.MasterKey = "not-so-secret"

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.storage.Close() })

	require.NotNil(t, application.dashboardService.Guard.Policy)
	require.Equal(t, time.Second, application.catalog.HTTPClient.Timeout)
	require.NotNil(t, application.catalog.Observe)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = "cassandra"

	_, err := New(cfg)
	require.ErrorContains(t, err, "CLIENT_STORAGE_DRIVER")
}

func TestOpenSQLiteMigrationsApplied(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = DriverSQLite

	application, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, application.storage.Close())

	db, err := OpenSQLite(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	version, dirty, err := db.MigrationVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 1, version)
}
