package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

// VoteService implements the helpfulness vote ledger.
type VoteService struct {
	votes    repository.VoteRepository
	producer Publisher
	logger   *slog.Logger
}

// NewVoteService creates a new vote service.
func NewVoteService(votes repository.VoteRepository, producer Publisher, logger *slog.Logger) *VoteService {
	return &VoteService{
		votes:    votes,
		producer: producer,
		logger:   logger,
	}
}

// Vote records the caller's helpfulness vote on a review. Re-voting the same
// way is idempotent; voting the other way flips the vote. The returned
// result carries the recounted totals, the Wilson score, and the caller's
// current vote.
func (s *VoteService) Vote(ctx context.Context, kind domain.Kind, reviewID, userID string, helpful bool) (*domain.VoteResult, error) {
	if userID == "" {
		return nil, apperrors.AuthenticationRequired()
	}
	if _, err := domain.SpecFor(kind); err != nil {
		return nil, err
	}
	if reviewID == "" {
		return nil, apperrors.InvalidInput("review id is required")
	}

	result, err := s.votes.Apply(ctx, kind, reviewID, userID, helpful)
	if err != nil {
		return nil, fmt.Errorf("apply vote: %w", err)
	}

	votesTotal.WithLabelValues(string(kind), result.Action).Inc()

	if err := s.producer.PublishReviewVoteRecorded(ctx, kind, userID, result); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.vote_recorded event",
			slog.String("review_id", reviewID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "vote applied",
		slog.String("review_id", reviewID),
		slog.String("kind", string(kind)),
		slog.String("action", result.Action),
		slog.Int("helpful_count", result.HelpfulCount),
		slog.Int("not_helpful_count", result.NotHelpfulCount),
	)

	return result, nil
}

// UserVote returns the caller's current vote on a review, or nil.
func (s *VoteService) UserVote(ctx context.Context, kind domain.Kind, reviewID, userID string) (*domain.Vote, error) {
	if userID == "" {
		return nil, apperrors.AuthenticationRequired()
	}
	if _, err := domain.SpecFor(kind); err != nil {
		return nil, err
	}

	vote, err := s.votes.GetUserVote(ctx, kind, reviewID, userID)
	if err != nil {
		return nil, fmt.Errorf("get user vote: %w", err)
	}
	return vote, nil
}
