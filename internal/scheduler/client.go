package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"leadqualify_backend/platform/apperr"
	"leadqualify_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	qualifyBatchMaxRetry = 3
	// One queued run per scope at a time; repeated clicks collapse.
	qualifyBatchUniqueTTL = time.Minute
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueQualifyBatch queues one qualification run and returns the task id.
func (c *Client) EnqueueQualifyBatch(ctx context.Context, tenantID *uuid.UUID, limit int) (string, error) {
	if c == nil || c.client == nil {
		return "", apperr.Unavailable("task queue not configured")
	}

	payload := QualifyBatchPayload{Limit: limit}
	if tenantID != nil {
		payload.TenantID = tenantID.String()
	}

	task, err := NewQualifyBatchTask(payload)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(qualifyBatchMaxRetry),
		asynq.Unique(qualifyBatchUniqueTTL),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return "", apperr.Conflict("a qualification run for this scope is already queued")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "enqueue qualification run", err)
	}
	return info.ID, nil
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
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
