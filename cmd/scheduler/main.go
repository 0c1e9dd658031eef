package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"leadqualify_backend/internal/communications"
	"leadqualify_backend/internal/email"
	"leadqualify_backend/internal/events"
	"leadqualify_backend/internal/leads"
	"leadqualify_backend/internal/notification"
	"leadqualify_backend/internal/scheduler"
	"leadqualify_backend/platform/config"
	"leadqualify_backend/platform/db"
	"leadqualify_backend/platform/logger"
	"leadqualify_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "interval", cfg.GetQualificationInterval())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	val := validator.New()

	communicationsModule := communications.NewModule(pool, val)
	notificationModule := notification.New(sender, communicationsModule.Service(), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// Worker-side pipeline wiring (no HTTP handlers required).
	leadsModule, err := leads.NewModule(pool, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	var wg sync.WaitGroup
	run := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	reaper := scheduler.NewClaimReaper(
		leadsModule.Repository(),
		log,
		cfg.GetQualificationClaimTTL()/2,
		cfg.GetQualificationClaimTTL(),
		cfg.GetQualificationMaxAttempts(),
	)
	run(reaper.Run)

	ticker := scheduler.NewBatchTicker(leadsModule.Poller(), log, cfg.GetQualificationInterval())
	run(ticker.Run)

	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; queued qualification runs disabled")
	} else {
		worker, err := scheduler.NewWorker(cfg, leadsModule.Poller(), log)
		if err != nil {
			log.Error("failed to initialize scheduler worker", "error", err)
			panic("failed to initialize scheduler worker: " + err.Error())
		}
		run(worker.Run)
	}

	<-ctx.Done()
	log.Info("shutdown signal received, waiting for in-flight batches")
	wg.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
