package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/database"
)

// AnalyticsRepository backs the admin dashboard and CSV export with
// aggregate queries over the per-kind review tables.
type AnalyticsRepository struct {
	pool database.DBTX
}

// NewAnalyticsRepository creates a PostgreSQL-backed analytics repository.
func NewAnalyticsRepository(pool database.DBTX) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// StatusCounts returns total/approved/pending/rejected counts for a kind.
func (r *AnalyticsRepository) StatusCounts(ctx context.Context, kind domain.Kind) (total, approved, pending, rejected int, err error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE %s = $1),
		       COUNT(*) FILTER (WHERE %s = $2),
		       COUNT(*) FILTER (WHERE %s = $3)
		FROM %s`,
		spec.StatusCol, spec.StatusCol, spec.StatusCol, spec.Table)

	ctx, end := database.TraceQuery(ctx, "analytics.status_counts", spec.Table)
	err = r.pool.QueryRow(ctx, query,
		domain.StatusApproved, domain.StatusPending, domain.StatusRejected,
	).Scan(&total, &approved, &pending, &rejected)
	end(err)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("status counts: %w", err)
	}

	return total, approved, pending, rejected, nil
}

// AverageApprovedRating returns the average rating over approved reviews.
func (r *AnalyticsRepository) AverageApprovedRating(ctx context.Context, kind domain.Kind) (float64, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("SELECT COALESCE(AVG(%s), 0) FROM %s WHERE %s = $1",
		spec.RatingCol, spec.Table, spec.StatusCol)

	var avg float64
	ctx, end := database.TraceQuery(ctx, "analytics.avg_rating", spec.Table)
	err = r.pool.QueryRow(ctx, query, domain.StatusApproved).Scan(&avg)
	end(err)
	if err != nil {
		return 0, fmt.Errorf("average approved rating: %w", err)
	}

	return math.Round(avg*100) / 100, nil
}

// GlobalStarCounts returns the star distribution over approved reviews.
func (r *AnalyticsRepository) GlobalStarCounts(ctx context.Context, kind domain.Kind) (map[int]int, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s WHERE %s = $1 GROUP BY %s",
		spec.RatingCol, spec.Table, spec.StatusCol, spec.RatingCol)

	ctx, end := database.TraceQuery(ctx, "analytics.star_counts", spec.Table)
	rows, err := r.pool.Query(ctx, query, domain.StatusApproved)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("global star counts: %w", err)
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

// DailyTrend returns per-day review counts and rating averages over the
// last N days, oldest day first. Days without reviews are omitted.
func (r *AnalyticsRepository) DailyTrend(ctx context.Context, kind domain.Kind, days int) ([]repository.TrendPoint, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT to_char(created_at::date, 'YYYY-MM-DD'), COUNT(*), COALESCE(AVG(%s), 0)
		FROM %s
		WHERE created_at >= now() - ($1 || ' days')::interval
		GROUP BY created_at::date
		ORDER BY created_at::date`,
		spec.RatingCol, spec.Table)

	ctx, end := database.TraceQuery(ctx, "analytics.daily_trend", spec.Table)
	rows, err := r.pool.Query(ctx, query, days)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	defer rows.Close()

	points := []repository.TrendPoint{}
	for rows.Next() {
		var p repository.TrendPoint
		if err := rows.Scan(&p.Date, &p.Count, &p.AverageRating); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		p.AverageRating = math.Round(p.AverageRating*100) / 100
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend points: %w", err)
	}

	return points, nil
}

// ResponseCounts returns approved reviews with and without an owner
// response. Kinds without owner responses report everything as without.
func (r *AnalyticsRepository) ResponseCounts(ctx context.Context, kind domain.Kind) (withResponse, withoutResponse int, err error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return 0, 0, err
	}

	if !spec.SupportsResponse() {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", spec.Table, spec.StatusCol)
		ctx, end := database.TraceQuery(ctx, "analytics.response_counts", spec.Table)
		err = r.pool.QueryRow(ctx, query, domain.StatusApproved).Scan(&withoutResponse)
		end(err)
		if err != nil {
			return 0, 0, fmt.Errorf("response counts: %w", err)
		}
		return 0, withoutResponse, nil
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*) FILTER (WHERE %s IS NOT NULL),
		       COUNT(*) FILTER (WHERE %s IS NULL)
		FROM %s
		WHERE %s = $1`,
		spec.ResponseCol, spec.ResponseCol, spec.Table, spec.StatusCol)

	ctx, end := database.TraceQuery(ctx, "analytics.response_counts", spec.Table)
	err = r.pool.QueryRow(ctx, query, domain.StatusApproved).Scan(&withResponse, &withoutResponse)
	end(err)
	if err != nil {
		return 0, 0, fmt.Errorf("response counts: %w", err)
	}

	return withResponse, withoutResponse, nil
}

// Recent returns the most recent reviews for a kind.
func (r *AnalyticsRepository) Recent(ctx context.Context, kind domain.Kind, limit int) ([]domain.Review, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC LIMIT $1",
		selectColumns(spec), spec.Table)

	ctx, end := database.TraceQuery(ctx, "analytics.recent", spec.Table)
	rows, err := r.pool.Query(ctx, query, limit)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("recent reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows, kind, nil)
		if err != nil {
			return nil, fmt.Errorf("scan recent review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent reviews: %w", err)
	}

	return reviews, nil
}

// ExportRows returns all reviews of a kind projected for CSV export,
// newest first.
func (r *AnalyticsRepository) ExportRows(ctx context.Context, kind domain.Kind) ([]repository.AnalyticsRow, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, err
	}

	hasResponse := "FALSE"
	if spec.SupportsResponse() {
		hasResponse = fmt.Sprintf("%s IS NOT NULL", spec.ResponseCol)
	}

	query := fmt.Sprintf(`
		SELECT id, %s, %s, created_at, helpful_count, %s
		FROM %s
		ORDER BY created_at DESC`,
		spec.RatingCol, spec.StatusCol, hasResponse, spec.Table)

	ctx, end := database.TraceQuery(ctx, "analytics.export", spec.Table)
	rows, err := r.pool.Query(ctx, query)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}
	defer rows.Close()

	out := []repository.AnalyticsRow{}
	for rows.Next() {
		row := repository.AnalyticsRow{Kind: kind}
		if err := rows.Scan(&row.ID, &row.Rating, &row.Status, &row.CreatedAt, &row.HelpfulCount, &row.HasResponse); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export rows: %w", err)
	}

	return out, nil
}
