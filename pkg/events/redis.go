package events

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

const DefaultLatestKeyPrefix = "airsim:latest:"

type RedisOption func(r *RedisPublisher)

// WithLatestValue also stores each payload under prefix+topic, so late consumers can read the last sample
func WithLatestValue(prefix string, ttl time.Duration) RedisOption {
	return func(r *RedisPublisher) {
		r.latestPrefix = prefix
		r.latestTTL = ttl
	}
}

func NewRedisPublisher(client *redis.Client, opts ...RedisOption) *RedisPublisher {
	r := &RedisPublisher{client: client}
	for _, o := range opts {
		o(r)
	}
	return r
}

type RedisPublisher struct {
	client       *redis.Client
	latestPrefix string
	latestTTL    time.Duration
}

func (r *RedisPublisher) Publish(topic string, payload []byte) error {
	ctx := context.Background()
	if err := r.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("unable to publish to channel %v: %w", topic, err)
	}
	if r.latestTTL <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.latestPrefix+topic, payload, r.latestTTL).Err(); err != nil {
		return fmt.Errorf("unable to store latest value of %v: %w", topic, err)
	}
	return nil
}

func (r *RedisPublisher) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("unable to close redis client: %w", err)
	}
	return nil
}
