package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"iqol_crm_backend/platform/config"
	"iqol_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client   *asynq.Client
	queue    string
	interval time.Duration
	log      *logger.Logger
}

func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
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

	interval := cfg.GetConversionReconcileInterval()
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queue,
		interval: interval,
		log:      log,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueConversionReconcile(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewConversionReconcileTask()
	if err != nil {
		return err
	}

	// Unique keeps a slow reconcile run from stacking duplicates in the queue.
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.Unique(c.interval))
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		return err
	}
	return nil
}

// RunConversionReconcileLoop enqueues a reconcile task on every interval tick
// until the context is cancelled. The first task is enqueued immediately so a
// restart picks up stuck conversions without waiting a full interval.
func (c *Client) RunConversionReconcileLoop(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.EnqueueConversionReconcile(ctx); err != nil {
		c.log.Warn("failed to enqueue conversion reconcile", "error", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.EnqueueConversionReconcile(ctx); err != nil {
				c.log.Warn("failed to enqueue conversion reconcile", "error", err)
			}
		}
	}
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
