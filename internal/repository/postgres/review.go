package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/database"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

// ReviewRepository implements review persistence over the per-kind tables.
// All table and column identifiers come from the static kind registry, never
// from request input, so interpolating them into SQL is safe.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// selectColumns builds the shared projection for a kind. Kinds without owner
// responses project typed NULLs so every row scans the same way.
func selectColumns(spec domain.KindSpec) string {
	respCol := "NULL::text"
	respAt := "NULL::timestamptz"
	if spec.SupportsResponse() {
		respCol = spec.ResponseCol
		respAt = spec.ResponseAt
	}

	return fmt.Sprintf(
		"id, %s, author_id, %s, title, body, %s, sentiment, verified_purchase, photos, "+
			"helpful_count, not_helpful_count, wilson_score, reported_count, %s, %s, created_at, updated_at",
		spec.TargetCol, spec.RatingCol, spec.StatusCol, respCol, respAt,
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(s rowScanner, kind domain.Kind, total *int) (*domain.Review, error) {
	var (
		rv        domain.Review
		photosRaw []byte
	)

	dest := []any{
		&rv.ID,
		&rv.TargetID,
		&rv.AuthorID,
		&rv.Rating,
		&rv.Title,
		&rv.Body,
		&rv.Status,
		&rv.Sentiment,
		&rv.VerifiedPurchase,
		&photosRaw,
		&rv.HelpfulCount,
		&rv.NotHelpfulCount,
		&rv.WilsonScore,
		&rv.ReportedCount,
		&rv.OwnerResponse,
		&rv.OwnerResponseAt,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	}
	if total != nil {
		dest = append(dest, total)
	}

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	rv.Kind = kind
	if len(photosRaw) > 0 {
		if err := json.Unmarshal(photosRaw, &rv.Photos); err != nil {
			return nil, fmt.Errorf("decode photos: %w", err)
		}
	}

	return &rv, nil
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	spec, err := domain.SpecFor(review.Kind)
	if err != nil {
		return err
	}

	photos, err := json.Marshal(review.Photos)
	if err != nil {
		return fmt.Errorf("encode photos: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, author_id, %s, title, body, %s, sentiment, verified_purchase, photos,
		                helpful_count, not_helpful_count, wilson_score, reported_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0, 0, 0, $11, $12)`,
		spec.Table, spec.TargetCol, spec.RatingCol, spec.StatusCol)

	ctx, end := database.TraceQuery(ctx, "review.create", spec.Table)
	_, err = r.pool.Exec(ctx, query,
		review.ID,
		review.TargetID,
		review.AuthorID,
		review.Rating,
		review.Title,
		review.Body,
		review.Status,
		review.Sentiment,
		review.VerifiedPurchase,
		photos,
		review.CreatedAt,
		review.UpdatedAt,
	)
	end(err)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("review for this target already exists")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by kind and id.
func (r *ReviewRepository) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Review, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectColumns(spec), spec.Table)

	ctx, end := database.TraceQuery(ctx, "review.get", spec.Table)
	review, err := scanReview(r.pool.QueryRow(ctx, query, id), kind, nil)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return review, nil
}

// List returns reviews matching the filter along with the total count.
func (r *ReviewRepository) List(ctx context.Context, kind domain.Kind, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, 0, err
	}

	var (
		conditions []string
		args       []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.TargetID != nil {
		conditions = append(conditions, fmt.Sprintf("%s = %s", spec.TargetCol, arg(*filter.TargetID)))
	}
	if filter.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("author_id = %s", arg(*filter.AuthorID)))
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("%s = %s", spec.StatusCol, arg(*filter.Status)))
	}
	if filter.Rating != nil {
		conditions = append(conditions, fmt.Sprintf("%s = %s", spec.RatingCol, arg(*filter.Rating)))
	}
	if filter.Sentiment != nil {
		conditions = append(conditions, fmt.Sprintf("sentiment = %s", arg(*filter.Sentiment)))
	}
	if filter.HasPhotos != nil {
		if *filter.HasPhotos {
			conditions = append(conditions, "COALESCE(jsonb_array_length(photos), 0) > 0")
		} else {
			conditions = append(conditions, "COALESCE(jsonb_array_length(photos), 0) = 0")
		}
	}
	if filter.VerifiedOnly {
		conditions = append(conditions, "verified_purchase = TRUE")
	}
	if filter.WithResponse != nil && spec.SupportsResponse() {
		if *filter.WithResponse {
			conditions = append(conditions, fmt.Sprintf("%s IS NOT NULL", spec.ResponseCol))
		} else {
			conditions = append(conditions, fmt.Sprintf("%s IS NULL", spec.ResponseCol))
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * perPage
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM %s
		%s
		ORDER BY %s
		LIMIT %s OFFSET %s`,
		selectColumns(spec), spec.Table, where, orderBy(spec, filter.Sort), arg(perPage), arg(offset))

	ctx, end := database.TraceQuery(ctx, "review.list", spec.Table)
	rows, err := r.pool.Query(ctx, query, args...)
	end(err)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	totalCount := 0

	for rows.Next() {
		rv, err := scanReview(rows, kind, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, totalCount, nil
}

func orderBy(spec domain.KindSpec, sort string) string {
	switch sort {
	case repository.SortOldest:
		return "created_at ASC"
	case repository.SortHighest:
		return fmt.Sprintf("%s DESC, created_at DESC", spec.RatingCol)
	case repository.SortLowest:
		return fmt.Sprintf("%s ASC, created_at DESC", spec.RatingCol)
	case repository.SortHelpful:
		return "wilson_score DESC, helpful_count DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

// Update persists changed review content and moderation fields.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	spec, err := domain.SpecFor(review.Kind)
	if err != nil {
		return err
	}

	photos, err := json.Marshal(review.Photos)
	if err != nil {
		return fmt.Errorf("encode photos: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, title = $2, body = $3, %s = $4, sentiment = $5, photos = $6, updated_at = $7
		WHERE id = $8`,
		spec.Table, spec.RatingCol, spec.StatusCol)

	ctx, end := database.TraceQuery(ctx, "review.update", spec.Table)
	tag, err := r.pool.Exec(ctx, query,
		review.Rating,
		review.Title,
		review.Body,
		review.Status,
		review.Sentiment,
		photos,
		review.UpdatedAt,
		review.ID,
	)
	end(err)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// Delete removes a review along with its votes and abuse reports.
func (r *ReviewRepository) Delete(ctx context.Context, kind domain.Kind, id string) error {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM review_votes WHERE review_kind = $1 AND review_id = $2", kind, id); err != nil {
		return fmt.Errorf("delete review votes: %w", err)
	}
	if _, err := tx.Exec(ctx,
		"DELETE FROM review_abuse_reports WHERE review_kind = $1 AND review_id = $2", kind, id); err != nil {
		return fmt.Errorf("delete abuse reports: %w", err)
	}

	tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", spec.Table), id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	return nil
}

// SetStatus updates only the moderation status column.
func (r *ReviewRepository) SetStatus(ctx context.Context, kind domain.Kind, id, status string) error {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = $1, updated_at = $2 WHERE id = $3", spec.Table, spec.StatusCol)

	ctx, end := database.TraceQuery(ctx, "review.set_status", spec.Table)
	tag, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	end(err)
	if err != nil {
		return fmt.Errorf("set review status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// SetOwnerResponse writes the owner response and its timestamp.
func (r *ReviewRepository) SetOwnerResponse(ctx context.Context, kind domain.Kind, id, response string, respondedAt time.Time) error {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return err
	}
	if !spec.SupportsResponse() {
		return apperrors.InvalidInput(fmt.Sprintf("review kind %q does not support owner responses", kind))
	}

	query := fmt.Sprintf("UPDATE %s SET %s = $1, %s = $2, updated_at = $2 WHERE id = $3",
		spec.Table, spec.ResponseCol, spec.ResponseAt)

	ctx, end := database.TraceQuery(ctx, "review.set_response", spec.Table)
	tag, err := r.pool.Exec(ctx, query, response, respondedAt, id)
	end(err)
	if err != nil {
		return fmt.Errorf("set owner response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// ListPending returns pending reviews oldest-first for the moderation queue.
func (r *ReviewRepository) ListPending(ctx context.Context, kind domain.Kind, page, perPage int) ([]domain.Review, int, error) {
	status := domain.StatusPending
	return r.List(ctx, kind, repository.ReviewFilter{
		Status:  &status,
		Sort:    repository.SortOldest,
		Page:    page,
		PerPage: perPage,
	})
}

// ExistsByAuthorAndTarget reports whether the author already reviewed the target.
func (r *ReviewRepository) ExistsByAuthorAndTarget(ctx context.Context, kind domain.Kind, authorID, targetID string) (bool, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE author_id = $1 AND %s = $2)",
		spec.Table, spec.TargetCol)

	var exists bool
	ctx, end := database.TraceQuery(ctx, "review.exists", spec.Table)
	err = r.pool.QueryRow(ctx, query, authorID, targetID).Scan(&exists)
	end(err)
	if err != nil {
		return false, fmt.Errorf("check review existence: %w", err)
	}

	return exists, nil
}
