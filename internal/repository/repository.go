package repository

import (
	"context"
	"time"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
)

// ReviewFilter defines filter and sort criteria for listing reviews.
type ReviewFilter struct {
	TargetID     *string
	AuthorID     *string
	Status       *string
	Rating       *int
	Sentiment    *string
	HasPhotos    *bool
	VerifiedOnly bool
	WithResponse *bool
	Sort         string // newest, oldest, highest, lowest, helpful
	Page         int
	PerPage      int
}

// Sort keys accepted by ReviewFilter.Sort.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortHighest = "highest"
	SortLowest  = "lowest"
	SortHelpful = "helpful"
)

// ValidSort reports whether s is an accepted sort key.
func ValidSort(s string) bool {
	switch s {
	case SortNewest, SortOldest, SortHighest, SortLowest, SortHelpful:
		return true
	}
	return false
}

// ReviewRepository defines persistence operations over the per-kind review
// tables. Every method resolves the kind's schema through the registry.
type ReviewRepository interface {
	// Create inserts a new review.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by kind and id.
	GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Review, error)

	// List returns reviews matching the filter along with the total count.
	List(ctx context.Context, kind domain.Kind, filter ReviewFilter) ([]domain.Review, int, error)

	// Update persists changed review content and moderation fields.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review and its votes and abuse reports.
	Delete(ctx context.Context, kind domain.Kind, id string) error

	// SetStatus updates only the moderation status column.
	SetStatus(ctx context.Context, kind domain.Kind, id, status string) error

	// SetOwnerResponse writes the owner response and its timestamp.
	SetOwnerResponse(ctx context.Context, kind domain.Kind, id, response string, respondedAt time.Time) error

	// ListPending returns pending reviews oldest-first for the moderation queue.
	ListPending(ctx context.Context, kind domain.Kind, page, perPage int) ([]domain.Review, int, error)

	// ExistsByAuthorAndTarget reports whether the author already reviewed the target.
	ExistsByAuthorAndTarget(ctx context.Context, kind domain.Kind, authorID, targetID string) (bool, error)
}

// VoteRepository is the vote ledger. Apply runs inside a transaction that
// locks the review row, so concurrent votes on one review serialize.
type VoteRepository interface {
	// Apply records or flips the user's vote and recounts the review's
	// counters and Wilson score atomically. Repeat identical votes are
	// idempotent and never change the counts.
	Apply(ctx context.Context, kind domain.Kind, reviewID, userID string, helpful bool) (*domain.VoteResult, error)

	// GetUserVote returns the user's current vote, or nil when absent.
	GetUserVote(ctx context.Context, kind domain.Kind, reviewID, userID string) (*domain.Vote, error)
}

// ReportRepository stores abuse reports. Duplicate reports by the same
// reporter are rejected by a unique constraint.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.AbuseReport) error
	CountForReview(ctx context.Context, kind domain.Kind, reviewID string) (int, error)
}

// StatsRepository aggregates approved reviews per target.
type StatsRepository interface {
	GetRatingStats(ctx context.Context, kind domain.Kind, targetID string) (*domain.RatingStats, error)
	StarCounts(ctx context.Context, kind domain.Kind, targetID string) (map[int]int, error)
}

// TargetRepository reads the reviewed entities' tables for existence and
// ownership checks.
type TargetRepository interface {
	GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.TargetEntity, error)
}

// AnalyticsRow is one review projected for the dashboard and CSV export.
type AnalyticsRow struct {
	Kind         domain.Kind
	ID           string
	Rating       int
	Status       string
	CreatedAt    time.Time
	HelpfulCount int
	HasResponse  bool
}

// VerticalBreakdown summarizes one kind for the dashboard.
type VerticalBreakdown struct {
	Kind          domain.Kind `json:"kind"`
	Label         string      `json:"label"`
	Total         int         `json:"total"`
	Approved      int         `json:"approved"`
	Pending       int         `json:"pending"`
	AverageRating float64     `json:"average_rating"`
}

// TrendPoint is one day of the rating trend.
type TrendPoint struct {
	Date          string  `json:"date"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

// AnalyticsRepository backs the admin dashboard and CSV export.
type AnalyticsRepository interface {
	// StatusCounts returns total/approved/pending/rejected counts for a kind.
	StatusCounts(ctx context.Context, kind domain.Kind) (total, approved, pending, rejected int, err error)

	// AverageApprovedRating returns the average rating over approved reviews.
	AverageApprovedRating(ctx context.Context, kind domain.Kind) (float64, error)

	// GlobalStarCounts returns the star distribution over approved reviews.
	GlobalStarCounts(ctx context.Context, kind domain.Kind) (map[int]int, error)

	// DailyTrend returns per-day counts and averages over the last N days.
	DailyTrend(ctx context.Context, kind domain.Kind, days int) ([]TrendPoint, error)

	// ResponseCounts returns approved reviews with and without owner response.
	ResponseCounts(ctx context.Context, kind domain.Kind) (withResponse, withoutResponse int, err error)

	// Recent returns the most recent reviews for a kind.
	Recent(ctx context.Context, kind domain.Kind, limit int) ([]domain.Review, error)

	// ExportRows streams all reviews of a kind for CSV export.
	ExportRows(ctx context.Context, kind domain.Kind) ([]AnalyticsRow, error)
}
