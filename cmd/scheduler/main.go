package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iqol_crm_backend/internal/agents"
	agentrepo "iqol_crm_backend/internal/agents/repository"
	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/events"
	"iqol_crm_backend/internal/leads"
	leadrepo "iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/internal/scheduler"
	"iqol_crm_backend/internal/vocab"
	"iqol_crm_backend/platform/config"
	"iqol_crm_backend/platform/db"
	"iqol_crm_backend/platform/logger"
	"iqol_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

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

	voc, err := vocab.Load(cfg.GetVocabularyFile())
	if err != nil {
		log.Error("failed to load vocabulary", "error", err)
		panic("failed to load vocabulary: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Worker-side conversion reconcile wiring (no HTTP handlers required).
	allocator := counter.New()
	detector := dedupe.NewDetector(leadrepo.New(pool), agentrepo.New(pool), log)
	agentsModule := agents.NewModule(pool, detector, allocator, voc, eventBus, val, log)
	leadsModule := leads.NewModule(pool, agentsModule.Repository(), detector, allocator, voc, eventBus, val, log)

	client, err := scheduler.NewClient(cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()
	go client.RunConversionReconcileLoop(ctx)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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
