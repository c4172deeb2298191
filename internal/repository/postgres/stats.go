package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/database"
)

// StatsRepository aggregates approved reviews per target.
type StatsRepository struct {
	pool database.DBTX
}

// NewStatsRepository creates a PostgreSQL-backed stats repository.
func NewStatsRepository(pool database.DBTX) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// GetRatingStats returns the average, total, and star distribution over
// approved reviews of a target. Targets with no approved reviews get zeroed
// stats, not an error.
func (r *StatsRepository) GetRatingStats(ctx context.Context, kind domain.Kind, targetID string) (*domain.RatingStats, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, err
	}

	stats := &domain.RatingStats{
		Kind:     kind,
		TargetID: targetID,
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(AVG(%s), 0), COUNT(*)
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		spec.RatingCol, spec.Table, spec.TargetCol, spec.StatusCol)

	ctx, end := database.TraceQuery(ctx, "stats.get", spec.Table)
	err = r.pool.QueryRow(ctx, query, targetID, domain.StatusApproved).Scan(
		&stats.AverageRating,
		&stats.TotalCount,
	)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("get rating stats: %w", err)
	}

	stats.AverageRating = math.Round(stats.AverageRating*10) / 10

	stats.StarCounts, err = r.StarCounts(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// StarCounts returns the per-star histogram over approved reviews of a
// target. All five buckets are present even when empty.
func (r *StatsRepository) StarCounts(ctx context.Context, kind domain.Kind, targetID string) (map[int]int, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM %s
		WHERE %s = $1 AND %s = $2
		GROUP BY %s`,
		spec.RatingCol, spec.Table, spec.TargetCol, spec.StatusCol, spec.RatingCol)

	ctx, end := database.TraceQuery(ctx, "stats.star_counts", spec.Table)
	rows, err := r.pool.Query(ctx, query, targetID, domain.StatusApproved)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("get star counts: %w", err)
	}
	defer rows.Close()

	counts := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for rows.Next() {
		var star, count int
		if err := rows.Scan(&star, &count); err != nil {
			return nil, fmt.Errorf("scan star count: %w", err)
		}
		counts[star] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate star counts: %w", err)
	}

	return counts, nil
}
