package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/questline/treasurehunt/internal/hunt"
)

// ProgressCache holds one snapshot per game. Mutations never update a
// cached snapshot in place — they invalidate it, strictly after the
// underlying write has committed, and the next Status read rebuilds.
type ProgressCache interface {
	Get(ctx context.Context, gameID string) (*hunt.GameSnapshot, bool)
	Set(ctx context.Context, gameID string, snap *hunt.GameSnapshot)
	Invalidate(ctx context.Context, gameID string)
}

// RedisCache backs ProgressCache with Redis. Cache failures are logged
// and otherwise ignored: a miss just costs a rebuild from SQLite.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    time.Hour,
		logger: logger,
	}
}

func (c *RedisCache) key(gameID string) string {
	return fmt.Sprintf("game:%s:snapshot", gameID)
}

func (c *RedisCache) Get(ctx context.Context, gameID string) (*hunt.GameSnapshot, bool) {
	data, err := c.client.Get(ctx, c.key(gameID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", "game_id", gameID, "error", err)
		return nil, false
	}
	var snap hunt.GameSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.logger.Warn("cache entry corrupt", "game_id", gameID, "error", err)
		return nil, false
	}
	return &snap, true
}

func (c *RedisCache) Set(ctx context.Context, gameID string, snap *hunt.GameSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(gameID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "game_id", gameID, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, gameID string) {
	if err := c.client.Del(ctx, c.key(gameID)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", "game_id", gameID, "error", err)
	}
}
