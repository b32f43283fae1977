package scheduler

import (
	"context"
	"fmt"
	"time"

	"iqol_crm_backend/platform/config"
	"iqol_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// ConversionReconciler finishes or unwinds lead conversions whose second
// phase never ran.
type ConversionReconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	reconciler ConversionReconciler
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, reconciler ConversionReconciler, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		reconciler: reconciler,
		log:        log,
	}

	mux.HandleFunc(TaskConversionReconcile, w.handleConversionReconcile)

	return w, nil
}

func (w *Worker) handleConversionReconcile(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseConversionReconcilePayload(task)
	if err != nil {
		return err
	}

	if w.reconciler == nil {
		return nil
	}

	touched, err := w.reconciler.Reconcile(ctx)
	if err != nil {
		return err
	}

	if touched > 0 {
		w.log.Info("conversion reconcile finished",
			"touched", touched,
			"requestedAt", time.UnixMilli(payload.RequestedAt),
		)
	}

	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
