package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

func newTestStatsService(repo *mockStatsRepository, cache *mockStatsCache) *StatsService {
	return NewStatsService(repo, cache, newTestLogger())
}

func sampleStats() *domain.RatingStats {
	return &domain.RatingStats{
		Kind:          domain.KindCommerce,
		TargetID:      "target-1",
		AverageRating: 4.3,
		TotalCount:    12,
		StarCounts:    map[int]int{1: 0, 2: 1, 3: 2, 4: 1, 5: 8},
	}
}

func TestGetRatingStats_CacheMissPopulatesCache(t *testing.T) {
	repo := new(mockStatsRepository)
	cache := new(mockStatsCache)
	svc := newTestStatsService(repo, cache)
	ctx := context.Background()

	key := "review_stats:commerce:target-1"
	cache.On("Get", ctx, key).Return(nil, nil)
	repo.On("GetRatingStats", ctx, domain.KindCommerce, "target-1").Return(sampleStats(), nil)
	cache.On("Set", ctx, key, mock.AnythingOfType("[]uint8"), time.Hour).Return(nil)

	stats, err := svc.GetRatingStats(ctx, domain.KindCommerce, "target-1")

	require.NoError(t, err)
	assert.InDelta(t, 4.3, stats.AverageRating, 0.001)
	assert.Equal(t, 12, stats.TotalCount)
	cache.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestGetRatingStats_CacheHitSkipsRepository(t *testing.T) {
	repo := new(mockStatsRepository)
	cache := new(mockStatsCache)
	svc := newTestStatsService(repo, cache)
	ctx := context.Background()

	encoded, err := json.Marshal(sampleStats())
	require.NoError(t, err)
	cache.On("Get", ctx, "review_stats:commerce:target-1").Return(encoded, nil)

	stats, err := svc.GetRatingStats(ctx, domain.KindCommerce, "target-1")

	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalCount)
	repo.AssertNotCalled(t, "GetRatingStats", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRatingStats_CacheReadFailureFallsThrough(t *testing.T) {
	repo := new(mockStatsRepository)
	cache := new(mockStatsCache)
	svc := newTestStatsService(repo, cache)
	ctx := context.Background()

	key := "review_stats:commerce:target-1"
	cache.On("Get", ctx, key).Return(nil, assert.AnError)
	repo.On("GetRatingStats", ctx, domain.KindCommerce, "target-1").Return(sampleStats(), nil)
	cache.On("Set", ctx, key, mock.AnythingOfType("[]uint8"), time.Hour).Return(nil)

	stats, err := svc.GetRatingStats(ctx, domain.KindCommerce, "target-1")

	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalCount)
}

func TestGetRatingStats_CacheWriteFailureIsNotFatal(t *testing.T) {
	repo := new(mockStatsRepository)
	cache := new(mockStatsCache)
	svc := newTestStatsService(repo, cache)
	ctx := context.Background()

	key := "review_stats:agro:target-9"
	agroStats := sampleStats()
	agroStats.Kind = domain.KindAgro
	agroStats.TargetID = "target-9"

	cache.On("Get", ctx, key).Return(nil, nil)
	repo.On("GetRatingStats", ctx, domain.KindAgro, "target-9").Return(agroStats, nil)
	cache.On("Set", ctx, key, mock.AnythingOfType("[]uint8"), time.Hour).Return(assert.AnError)

	stats, err := svc.GetRatingStats(ctx, domain.KindAgro, "target-9")

	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalCount)
}

func TestGetRatingStats_UnsupportedKind(t *testing.T) {
	svc := newTestStatsService(new(mockStatsRepository), new(mockStatsCache))

	stats, err := svc.GetRatingStats(context.Background(), domain.Kind("hotel"), "target-1")

	assert.Nil(t, stats)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedKind)
}

func TestInvalidate_DeletesKey(t *testing.T) {
	cache := new(mockStatsCache)
	svc := newTestStatsService(new(mockStatsRepository), cache)
	ctx := context.Background()

	cache.On("Del", ctx, "review_stats:commerce:target-1").Return(nil)

	svc.Invalidate(ctx, domain.KindCommerce, "target-1")

	cache.AssertExpectations(t)
}

func TestInvalidate_DeleteFailureIsSwallowed(t *testing.T) {
	cache := new(mockStatsCache)
	svc := newTestStatsService(new(mockStatsRepository), cache)
	ctx := context.Background()

	cache.On("Del", ctx, "review_stats:commerce:target-1").Return(assert.AnError)

	svc.Invalidate(ctx, domain.KindCommerce, "target-1")

	cache.AssertExpectations(t)
}
