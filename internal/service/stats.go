package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
)

const statsCacheTTL = time.Hour

// StatsCache stores serialized rating stats. Implemented over redis; a miss
// is (nil, nil).
type StatsCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisStatsCache is the redis-backed StatsCache.
type RedisStatsCache struct {
	client *redis.Client
}

// NewRedisStatsCache creates a redis-backed stats cache.
func NewRedisStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

// Get returns the cached value, or nil on a miss.
func (c *RedisStatsCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores the value with a TTL.
func (c *RedisStatsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Del removes the key.
func (c *RedisStatsCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// StatsService serves rating aggregates with a cache in front of the
// database.
type StatsService struct {
	repo   repository.StatsRepository
	cache  StatsCache
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(repo repository.StatsRepository, cache StatsCache, logger *slog.Logger) *StatsService {
	return &StatsService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func statsKey(kind domain.Kind, targetID string) string {
	return fmt.Sprintf("review_stats:%s:%s", kind, targetID)
}

// GetRatingStats returns the aggregate over approved reviews of a target.
// Cache failures fall through to the database.
func (s *StatsService) GetRatingStats(ctx context.Context, kind domain.Kind, targetID string) (*domain.RatingStats, error) {
	if _, err := domain.SpecFor(kind); err != nil {
		return nil, err
	}

	key := statsKey(kind, targetID)

	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "stats cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	} else if cached != nil {
		var stats domain.RatingStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			statsCacheHits.WithLabelValues("hit").Inc()
			return &stats, nil
		}
	}

	statsCacheHits.WithLabelValues("miss").Inc()

	stats, err := s.repo.GetRatingStats(ctx, kind, targetID)
	if err != nil {
		return nil, fmt.Errorf("get rating stats: %w", err)
	}

	if encoded, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, key, encoded, statsCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "stats cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return stats, nil
}

// Invalidate drops the cached stats for a target.
func (s *StatsService) Invalidate(ctx context.Context, kind domain.Kind, targetID string) {
	key := statsKey(kind, targetID)
	if err := s.cache.Del(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "stats cache invalidation failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
