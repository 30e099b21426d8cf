package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"unitex/internal/domain"
)

// LeaderboardCache guarda el ranking de referidos ya calculado.
// Los errores nunca se propagan: ante cualquier fallo se recalcula desde la base.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]domain.LeaderboardEntry, bool)
	Set(ctx context.Context, entries []domain.LeaderboardEntry)
	Invalidate(ctx context.Context)
}

type noopLeaderboardCache struct{}

// NewNoopLeaderboardCache se usa cuando no hay redis configurado.
func NewNoopLeaderboardCache() LeaderboardCache { return noopLeaderboardCache{} }

func (noopLeaderboardCache) Get(context.Context) ([]domain.LeaderboardEntry, bool) { return nil, false }
func (noopLeaderboardCache) Set(context.Context, []domain.LeaderboardEntry)        {}
func (noopLeaderboardCache) Invalidate(context.Context)                            {}

type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisLeaderboardCache struct {
	client  redisKVClient
	logger  *zap.Logger
	ttl     time.Duration
	key     string
	timeout time.Duration
}

func NewRedisLeaderboardCache(client *redis.Client, logger *zap.Logger, ttl time.Duration) LeaderboardCache {
	if client == nil {
		return NewNoopLeaderboardCache()
	}
	return newRedisLeaderboardCache(client, logger, ttl)
}

func newRedisLeaderboardCache(client redisKVClient, logger *zap.Logger, ttl time.Duration) *redisLeaderboardCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisLeaderboardCache{
		client:  client,
		logger:  logger,
		ttl:     ttl,
		key:     "referrals:leaderboard",
		timeout: 500 * time.Millisecond,
	}
}

func (c *redisLeaderboardCache) Get(ctx context.Context) ([]domain.LeaderboardEntry, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("leaderboard cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn("leaderboard cache corrupt entry", zap.Error(err))
		return nil, false
	}
	return entries, true
}

func (c *redisLeaderboardCache) Set(ctx context.Context, entries []domain.LeaderboardEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("leaderboard cache set failed", zap.Error(err))
	}
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.logger.Warn("leaderboard cache invalidate failed", zap.Error(err))
	}
}
