package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadqualify_backend/internal/adapters/storage"
	"leadqualify_backend/internal/communications"
	"leadqualify_backend/internal/email"
	"leadqualify_backend/internal/events"
	apphttp "leadqualify_backend/internal/http"
	"leadqualify_backend/internal/http/router"
	"leadqualify_backend/internal/leads"
	"leadqualify_backend/internal/notification"
	"leadqualify_backend/internal/scheduler"
	"leadqualify_backend/migrations"
	"leadqualify_backend/platform/config"
	"leadqualify_backend/platform/db"
	"leadqualify_backend/platform/logger"
	"leadqualify_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	if cfg.GetJWTAccessSecret() == "" {
		log.Error("JWT_ACCESS_SECRET is required for the API server")
		panic("JWT_ACCESS_SECRET is required for the API server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if cfg.MigrationsOnBoot {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}
	log.Info("email sender initialized", "provider", sender.Provider())

	// Shared validator instance for dependency injection
	val := validator.New()

	initRunReportArchive(ctx, cfg, eventBus, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	communicationsModule := communications.NewModule(pool, val)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(sender, communicationsModule.Service(), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	leadsModule, err := leads.NewModule(pool, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	if client := initQueueClient(cfg, log); client != nil {
		defer func() { _ = client.Close() }()
		leadsModule.SetEnqueuer(client)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			communicationsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initQueueClient returns nil when Redis is not configured; the enqueue
// endpoint then answers 503.
func initQueueClient(cfg config.SchedulerConfig, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; queued qualification runs disabled")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task queue client", "error", err)
		return nil
	}
	return client
}

// initRunReportArchive subscribes the MinIO archiver when storage is configured.
func initRunReportArchive(ctx context.Context, cfg config.MinIOConfig, bus events.Bus, log *logger.Logger) {
	if !cfg.IsMinIOEnabled() {
		log.Info("MINIO_ENDPOINT not configured; run reports are not archived")
		return
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		return
	}

	var archiver *storage.RunReportArchiver
	if err := withRetry(ctx, log, "ensure run report bucket", 5, 2*time.Second, func() error {
		a, err := storage.NewRunReportArchiver(ctx, storageSvc, cfg.GetMinioBucketRunReports(), log)
		if err != nil {
			return err
		}
		archiver = a
		return nil
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketRunReports())
		return
	}

	archiver.RegisterHandlers(bus)
	log.Info("run report archive enabled", "bucket", cfg.GetMinioBucketRunReports())
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
