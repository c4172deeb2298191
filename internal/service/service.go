package service

import (
	"context"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
)

// Publisher publishes review lifecycle events. Implemented by
// event.Producer; event publishing is best-effort and never fails the
// originating operation.
type Publisher interface {
	PublishReviewSubmitted(ctx context.Context, review *domain.Review) error
	PublishReviewStatusChanged(ctx context.Context, review *domain.Review, oldStatus, actorID string) error
	PublishReviewVoteRecorded(ctx context.Context, kind domain.Kind, voterID string, result *domain.VoteResult) error
	PublishReviewReported(ctx context.Context, report *domain.AbuseReport) error
}

// FloodChecker throttles repeat submissions by the same author for the same
// target over a rolling window.
type FloodChecker interface {
	Check(ctx context.Context, kind domain.Kind, authorID, targetID string) error
}

// StatsInvalidator drops cached rating stats for a target. Called whenever
// a review enters or leaves the approved set, or an approved review's
// rating changes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, kind domain.Kind, targetID string)
}

// Actor roles resolved from authentication claims.
const (
	RoleAdmin = "admin"
)
