package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/openpic/openpic/internal/config"
)

// RedisProducer pushes fingerprints onto Redis lists. Items are LPUSHed and
// the worker RPOPs, so each list is FIFO. Multiple coordinator processes may
// push concurrently; ordering across producers is whatever Redis serializes.
type RedisProducer struct {
	rdb       redis.Cmdable
	selfie    string
	eventList string
}

// NewRedisProducer creates a producer for the configured queue pair.
func NewRedisProducer(rdb redis.Cmdable, cfg config.QueueConfig) *RedisProducer {
	return &RedisProducer{
		rdb:       rdb,
		selfie:    cfg.SelfieQueue,
		eventList: cfg.EventPhotoQueue,
	}
}

// PushHighPriority implements Producer.
func (p *RedisProducer) PushHighPriority(ctx context.Context, fp string) error {
	if err := p.rdb.LPush(ctx, p.selfie, fp).Err(); err != nil {
		return fmt.Errorf("push %s to %s: %w", fp, p.selfie, err)
	}
	return nil
}

// PushLowPriority implements Producer.
func (p *RedisProducer) PushLowPriority(ctx context.Context, fp string) error {
	if err := p.rdb.LPush(ctx, p.eventList, fp).Err(); err != nil {
		return fmt.Errorf("push %s to %s: %w", fp, p.eventList, err)
	}
	return nil
}
