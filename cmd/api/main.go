package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iqol_crm_backend/internal/adapters/storage"
	"iqol_crm_backend/internal/agents"
	agentrepo "iqol_crm_backend/internal/agents/repository"
	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/email"
	"iqol_crm_backend/internal/events"
	apphttp "iqol_crm_backend/internal/http"
	"iqol_crm_backend/internal/http/router"
	"iqol_crm_backend/internal/intake"
	"iqol_crm_backend/internal/leads"
	leadrepo "iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/internal/pipeline"
	"iqol_crm_backend/internal/vocab"
	"iqol_crm_backend/platform/config"
	"iqol_crm_backend/platform/db"
	"iqol_crm_backend/platform/logger"
	"iqol_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		panic("failed to initialize redis client: " + err.Error())
	}
	defer func() { _ = redisClient.Close() }()
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return redisClient.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for spreadsheet archival (MinIO)
	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure intake-uploads bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketIntakeUploads())
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketIntakeUploads())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "intakeUploadsBucket", cfg.GetMinioBucketIntakeUploads())

	voc, err := vocab.Load(cfg.GetVocabularyFile())
	if err != nil {
		log.Error("failed to load vocabulary", "error", err)
		panic("failed to load vocabulary: " + err.Error())
	}
	log.Info("vocabulary loaded", "leadSources", len(voc.LeadSources), "rnrCeiling", voc.RNRCeiling)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	allocator := counter.New()
	detector := dedupe.NewDetector(leadrepo.New(pool), agentrepo.New(pool), log)
	commitLock := dedupe.NewCommitLock(redisClient)

	agentsModule := agents.NewModule(pool, detector, allocator, voc, eventBus, val, log)
	leadsModule := leads.NewModule(pool, agentsModule.Repository(), detector, allocator, voc, eventBus, val, log)
	pipelineModule := pipeline.NewModule(pool, val)
	intakeModule := intake.NewModule(
		pool,
		leadsModule.Repository(),
		detector,
		allocator,
		voc,
		commitLock,
		storageSvc,
		cfg.GetMinioBucketIntakeUploads(),
		pipelineModule.Service(),
		eventBus,
		log,
	)

	// Email module subscribes to domain events (not HTTP-facing)
	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		)
		log.Info("email sender initialized", "host", cfg.GetSMTPHost())
	} else {
		log.Warn("email sending disabled; import summaries will not be delivered")
	}
	email.NewModule(sender, eventBus, log)

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
			agentsModule,
			intakeModule,
			pipelineModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func newRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, errors.New("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if opt.TLSConfig != nil && cfg.GetRedisTLSInsecure() {
		opt.TLSConfig.InsecureSkipVerify = true
	}

	return redis.NewClient(opt), nil
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
