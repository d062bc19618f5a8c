package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/cinedash/internal/dashboard/http"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/metrics"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/service"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/store"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/store/drivers/memory"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/store/drivers/redis"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/store/drivers/sqlite"
	"github.com/aussiebroadwan/cinedash/pkg/cryptox"
	"github.com/aussiebroadwan/cinedash/pkg/httpx"
	"github.com/aussiebroadwan/cinedash/pkg/moviesdk"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the dashboard service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	storage store.ClientStorage
	sealer  *cryptox.Sealer
	catalog *moviesdk.Client

	// Services
	dashboardService    *service.DashboardService
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "cinedash",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStorage(); err != nil {
		return nil, err
	}

	if err := app.initSealer(); err != nil {
		_ = app.storage.Close()
		return nil, err
	}

	app.initServices()

	if err := app.initHTTP(); err != nil {
		_ = app.storage.Close()
		return nil, err
	}

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("cinedash starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"catalog", app.cfg.CatalogBaseURL,
		"storage", app.cfg.StorageDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.storage.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down cinedash...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.storage.Close(); err != nil {
		app.logger.Error("error closing client storage", "error", err)
		return err
	}

	app.logger.Info("cinedash stopped")
	return nil
}

// initStorage opens the configured client storage driver
func (app *Application) initStorage() error {
	switch app.cfg.StorageDriver {
	case DriverSQLite:
		db, err := OpenSQLite(app.cfg)
		if err != nil {
			return err
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
		app.storage = db

	case DriverRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
			TTL:      app.cfg.StorageTTL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.logger.Info("connected to redis", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)
		app.storage = rdb

	default:
		app.logger.Warn("using in-memory client storage, sessions are lost on restart")
		app.storage = memory.NewStore(app.cfg.StorageTTL)
	}

	return nil
}

// initSealer derives the token sealing key. Dev falls back to a random key.
func (app *Application) initSealer() error {
	if app.cfg.MasterKey == "" {
		sealer, err := cryptox.NewEphemeralSealer()
		if err != nil {
			return err
		}
		app.logger.Warn("CINEDASH_MASTER_KEY not set, using an ephemeral sealing key")
		app.sealer = sealer
		return nil
	}

	sealer, err := cryptox.NewSealer([]byte(app.cfg.MasterKey))
	if err != nil {
		return fmt.Errorf("failed to initialize token sealer: %w", err)
	}
	app.sealer = sealer
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.catalog = moviesdk.NewClient(app.cfg.CatalogBaseURL)
	app.catalog.HTTPClient.Timeout = app.cfg.CatalogTimeout
	app.catalog.Observe = metrics.ObserveCatalog

	guard := &service.Guard{Client: app.catalog, Policy: service.StrictPolicy}
	if app.cfg.SessionPolicy == PolicyLenient {
		guard.Policy = service.LenientPolicy
	}

	app.dashboardService = &service.DashboardService{Guard: guard}
	app.authService = service.NewAuthService(app.catalog)

	app.housekeepingService = service.NewHousekeepingService(
		app.storage,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	router, err := httpapi.NewRouter(
		BuildVersion,
		app.storage,
		app.sealer,
		httpx.ClientCookieConfig{
			Secure: !app.cfg.IsDev(),
			MaxAge: app.cfg.StorageTTL,
		},
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	proxies, err := httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}

	router.DashboardService = app.dashboardService
	router.AuthService = app.authService
	router.TrustedProxies = proxies
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}

// OpenSQLite opens the sqlite client storage named by cfg.DatabaseFile
// without applying migrations.
func OpenSQLite(cfg Config) (*sqlite.Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn, cfg.StorageTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}
