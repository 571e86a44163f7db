// ABOUTME: Redis-backed room AI flags for multi-process deployments
// ABOUTME: One key per room; SET/DEL/EXISTS keep the flag RMW atomic server-side

package roomstate

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "parley:ai-room:"

// Redis is a State backed by a Redis server, for deployments where message
// ingestion and toggling happen in different processes.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed flag store on an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// SetEnabled turns the AI on or off for the room.
func (r *Redis) SetEnabled(ctx context.Context, room string, enabled bool) error {
	key := redisKeyPrefix + room
	if enabled {
		if err := r.client.Set(ctx, key, "1", 0).Err(); err != nil {
			return fmt.Errorf("setting room flag: %w", err)
		}
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clearing room flag: %w", err)
	}
	return nil
}

// Enabled reports whether the AI is enabled for the room.
func (r *Redis) Enabled(ctx context.Context, room string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKeyPrefix+room).Result()
	if err != nil {
		return false, fmt.Errorf("reading room flag: %w", err)
	}
	return n > 0, nil
}
