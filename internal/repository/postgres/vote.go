package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/database"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

// VoteRepository implements the helpfulness vote ledger. Each Apply call
// locks the review row first, so concurrent votes on the same review
// serialize and the recount always sees a consistent ledger.
type VoteRepository struct {
	pool database.DBTX
}

// NewVoteRepository creates a PostgreSQL-backed vote repository.
func NewVoteRepository(pool database.DBTX) *VoteRepository {
	return &VoteRepository{pool: pool}
}

// Apply records or flips the user's vote and recounts the review's counters
// and Wilson score atomically. A repeat identical vote is idempotent.
func (r *VoteRepository) Apply(ctx context.Context, kind domain.Kind, reviewID, userID string, helpful bool) (*domain.VoteResult, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, "vote.apply", spec.Table)
	result, err := r.applyTx(ctx, spec, kind, reviewID, userID, helpful)
	end(err)
	return result, err
}

func (r *VoteRepository) applyTx(ctx context.Context, spec domain.KindSpec, kind domain.Kind, reviewID, userID string, helpful bool) (*domain.VoteResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin vote: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the review row so concurrent votes serialize per review.
	var lockedID string
	err = tx.QueryRow(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE id = $1 FOR UPDATE", spec.Table),
		reviewID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", reviewID)
		}
		return nil, fmt.Errorf("lock review: %w", err)
	}

	var existing bool
	var existingHelpful bool
	err = tx.QueryRow(ctx,
		"SELECT helpful FROM review_votes WHERE review_kind = $1 AND review_id = $2 AND user_id = $3",
		kind, reviewID, userID,
	).Scan(&existingHelpful)
	switch {
	case err == nil:
		existing = true
	case errors.Is(err, pgx.ErrNoRows):
		existing = false
	default:
		return nil, fmt.Errorf("load existing vote: %w", err)
	}

	var action string
	switch {
	case !existing:
		_, err = tx.Exec(ctx,
			"INSERT INTO review_votes (review_kind, review_id, user_id, helpful, voted_at) VALUES ($1, $2, $3, $4, $5)",
			kind, reviewID, userID, helpful, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("insert vote: %w", err)
		}
		action = domain.VoteActionRecorded
	case existingHelpful == helpful:
		// A repeat identical vote replaces the prior value; counts stay put.
		_, err = tx.Exec(ctx,
			"UPDATE review_votes SET voted_at = $1 WHERE review_kind = $2 AND review_id = $3 AND user_id = $4",
			time.Now().UTC(), kind, reviewID, userID)
		if err != nil {
			return nil, fmt.Errorf("refresh vote: %w", err)
		}
		action = domain.VoteActionUnchanged
	default:
		_, err = tx.Exec(ctx,
			"UPDATE review_votes SET helpful = $1, voted_at = $2 WHERE review_kind = $3 AND review_id = $4 AND user_id = $5",
			helpful, time.Now().UTC(), kind, reviewID, userID)
		if err != nil {
			return nil, fmt.Errorf("flip vote: %w", err)
		}
		action = domain.VoteActionChanged
	}

	var helpfulCount, notHelpfulCount int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE helpful), COUNT(*) FILTER (WHERE NOT helpful)
		FROM review_votes
		WHERE review_kind = $1 AND review_id = $2`,
		kind, reviewID,
	).Scan(&helpfulCount, &notHelpfulCount)
	if err != nil {
		return nil, fmt.Errorf("recount votes: %w", err)
	}

	wilson := domain.WilsonScore(helpfulCount, notHelpfulCount)

	_, err = tx.Exec(ctx,
		fmt.Sprintf("UPDATE %s SET helpful_count = $1, not_helpful_count = $2, wilson_score = $3, updated_at = $4 WHERE id = $5", spec.Table),
		helpfulCount, notHelpfulCount, wilson, time.Now().UTC(), reviewID)
	if err != nil {
		return nil, fmt.Errorf("update review counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit vote: %w", err)
	}

	return &domain.VoteResult{
		ReviewID:        reviewID,
		HelpfulCount:    helpfulCount,
		NotHelpfulCount: notHelpfulCount,
		WilsonScore:     wilson,
		UserVote:        helpful,
		Action:          action,
	}, nil
}

// GetUserVote returns the user's current vote, or nil when absent.
func (r *VoteRepository) GetUserVote(ctx context.Context, kind domain.Kind, reviewID, userID string) (*domain.Vote, error) {
	var vote domain.Vote

	ctx, end := database.TraceQuery(ctx, "vote.get", "review_votes")
	err := r.pool.QueryRow(ctx,
		"SELECT review_kind, review_id, user_id, helpful, voted_at FROM review_votes WHERE review_kind = $1 AND review_id = $2 AND user_id = $3",
		kind, reviewID, userID,
	).Scan(&vote.ReviewKind, &vote.ReviewID, &vote.UserID, &vote.Helpful, &vote.VotedAt)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user vote: %w", err)
	}

	return &vote, nil
}
