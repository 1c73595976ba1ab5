package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/nyaybooker/nyaybooker/internal/booking/http"
	"github.com/nyaybooker/nyaybooker/internal/booking/service"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
	"github.com/nyaybooker/nyaybooker/internal/booking/store/drivers/sqlite"
	"github.com/nyaybooker/nyaybooker/pkg/httpx"
	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
	"github.com/nyaybooker/nyaybooker/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the booking service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.Signer
	verifier *jwtx.Verifier
	counters httpx.CounterStore

	authService         *service.AuthService
	lawyerService       *service.LawyerService
	bookingService      *service.BookingService
	reviewService       *service.ReviewService
	notificationService *service.NotificationService
	adminService        *service.AdminService
	housekeepingService *service.HousekeepingService
	dispatcherService   *service.DispatcherService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "nyaybooker-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	secret := []byte(cfg.TokenSecret)
	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHS256(secret, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.signer = signer
	app.verifier = verifier

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initCounters()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.dispatcherService.Start()

	app.logger.Info("booking service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down booking service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.dispatcherService.Stop()
	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("booking service stopped")
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCounters picks the rate-limit counter store: Redis when configured
// (shared across replicas), otherwise in-process memory.
func (app *Application) initCounters() {
	if app.cfg.RedisAddr == "" {
		app.counters = httpx.NewMemoryCounters()
		app.logger.Info("rate limiting with in-memory counters")
		return
	}

	client := redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})
	app.counters = httpx.NewRedisCounters(client)
	app.logger.Info("rate limiting with redis counters", "addr", app.cfg.RedisAddr)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.TokenTTL,
	}
	app.lawyerService = &service.LawyerService{Store: app.db}
	app.bookingService = &service.BookingService{Store: app.db}
	app.reviewService = &service.ReviewService{Store: app.db}
	app.notificationService = &service.NotificationService{Store: app.db}
	app.adminService = &service.AdminService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.dispatcherService = service.NewDispatcherService(
		app.db,
		&service.LogSender{Logger: app.logger},
		app.logger,
		app.cfg.DispatchInterval,
		app.cfg.DispatchPerSec,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		app.counters,
		BuildVersion,
		app.cfg.AllowedOrigins,
		app.cfg.Env == "dev",
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.LawyerService = app.lawyerService
	router.BookingService = app.bookingService
	router.ReviewService = app.reviewService
	router.NotificationService = app.notificationService
	router.AdminService = app.adminService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
