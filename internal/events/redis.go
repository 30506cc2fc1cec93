package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher using Redis Streams
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// newRedisPublisher connects to Redis and verifies connectivity
func newRedisPublisher(url, password string, db int, prefix string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		// Fallback to plain host:port
		opts = &redis.Options{
			Addr:     url,
			Password: password,
			DB:       db,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if prefix == "" {
		prefix = "gridcast"
	}

	return &RedisPublisher{client: client, prefix: prefix}, nil
}

// streamName converts a subject to a Redis stream name
func (p *RedisPublisher) streamName(subject string) string {
	return fmt.Sprintf("%s:%s", p.prefix, subject)
}

// Publish appends a message to the subject's Redis stream
func (p *RedisPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	stream := p.streamName(subject)

	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]interface{}{
			"data": data,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", stream, err)
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
