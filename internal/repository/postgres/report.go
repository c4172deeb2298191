package postgres

import (
	"context"
	"fmt"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/database"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

// ReportRepository stores abuse reports. A unique constraint on
// (review_kind, review_id, reporter_id) closes the duplicate-report race.
type ReportRepository struct {
	pool database.DBTX
}

// NewReportRepository creates a PostgreSQL-backed abuse report repository.
func NewReportRepository(pool database.DBTX) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create inserts the report and bumps the review's reported counter in one
// transaction. Duplicate reports return a conflict.
func (r *ReportRepository) Create(ctx context.Context, report *domain.AbuseReport) error {
	spec, err := domain.SpecFor(report.ReviewKind)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin report: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO review_abuse_reports (id, review_kind, review_id, reporter_id, reason, details, reported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID,
		report.ReviewKind,
		report.ReviewID,
		report.ReporterID,
		report.Reason,
		report.Details,
		report.ReportedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("review already reported by this user")
		}
		return fmt.Errorf("insert abuse report: %w", err)
	}

	tag, err := tx.Exec(ctx,
		fmt.Sprintf("UPDATE %s SET reported_count = reported_count + 1 WHERE id = $1", spec.Table),
		report.ReviewID)
	if err != nil {
		return fmt.Errorf("bump reported count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", report.ReviewID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}

	return nil
}

// CountForReview returns how many abuse reports a review has received.
func (r *ReportRepository) CountForReview(ctx context.Context, kind domain.Kind, reviewID string) (int, error) {
	var count int

	ctx, end := database.TraceQuery(ctx, "report.count", "review_abuse_reports")
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM review_abuse_reports WHERE review_kind = $1 AND review_id = $2",
		kind, reviewID,
	).Scan(&count)
	end(err)
	if err != nil {
		return 0, fmt.Errorf("count abuse reports: %w", err)
	}

	return count, nil
}
