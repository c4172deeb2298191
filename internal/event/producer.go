package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	pkgkafka "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/kafka"
)

// Kafka topics for review lifecycle events.
const (
	TopicReviewSubmitted     = "reviews.review.submitted"
	TopicReviewStatusChanged = "reviews.review.status_changed"
	TopicReviewVoteRecorded  = "reviews.review.vote_recorded"
	TopicReviewReported      = "reviews.review.reported"
)

// Aggregate type constant.
const AggregateTypeReview = "review"

// Source identifier for events originating from this service.
const SourceReviewService = "review-engine"

// ReviewSubmittedData is the payload for a review.submitted event.
type ReviewSubmittedData struct {
	ID               string  `json:"id"`
	Kind             string  `json:"kind"`
	TargetID         string  `json:"target_id"`
	AuthorID         string  `json:"author_id"`
	Rating           int     `json:"rating"`
	Status           string  `json:"status"`
	VerifiedPurchase bool    `json:"verified_purchase"`
	Sentiment        *string `json:"sentiment,omitempty"`
}

// ReviewStatusChangedData is the payload for a review.status_changed event.
type ReviewStatusChangedData struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	TargetID  string `json:"target_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ActorID   string `json:"actor_id"`
}

// ReviewVoteRecordedData is the payload for a review.vote_recorded event.
type ReviewVoteRecordedData struct {
	ReviewID        string  `json:"review_id"`
	Kind            string  `json:"kind"`
	VoterID         string  `json:"voter_id"`
	Action          string  `json:"action"`
	HelpfulCount    int     `json:"helpful_count"`
	NotHelpfulCount int     `json:"not_helpful_count"`
	WilsonScore     float64 `json:"wilson_score"`
}

// ReviewReportedData is the payload for a review.reported event.
type ReviewReportedData struct {
	ReviewID   string `json:"review_id"`
	Kind       string `json:"kind"`
	ReporterID string `json:"reporter_id"`
	Reason     string `json:"reason"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the review engine.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, review *domain.Review) error {
	data := ReviewSubmittedData{
		ID:               review.ID,
		Kind:             string(review.Kind),
		TargetID:         review.TargetID,
		AuthorID:         review.AuthorID,
		Rating:           review.Rating,
		Status:           review.Status,
		VerifiedPurchase: review.VerifiedPurchase,
		Sentiment:        review.Sentiment,
	}

	return p.publish(ctx, TopicReviewSubmitted, review.ID, data)
}

// PublishReviewStatusChanged publishes a review.status_changed event.
func (p *Producer) PublishReviewStatusChanged(ctx context.Context, review *domain.Review, oldStatus, actorID string) error {
	data := ReviewStatusChangedData{
		ID:        review.ID,
		Kind:      string(review.Kind),
		TargetID:  review.TargetID,
		OldStatus: oldStatus,
		NewStatus: review.Status,
		ActorID:   actorID,
	}

	return p.publish(ctx, TopicReviewStatusChanged, review.ID, data)
}

// PublishReviewVoteRecorded publishes a review.vote_recorded event.
func (p *Producer) PublishReviewVoteRecorded(ctx context.Context, kind domain.Kind, voterID string, result *domain.VoteResult) error {
	data := ReviewVoteRecordedData{
		ReviewID:        result.ReviewID,
		Kind:            string(kind),
		VoterID:         voterID,
		Action:          result.Action,
		HelpfulCount:    result.HelpfulCount,
		NotHelpfulCount: result.NotHelpfulCount,
		WilsonScore:     result.WilsonScore,
	}

	return p.publish(ctx, TopicReviewVoteRecorded, result.ReviewID, data)
}

// PublishReviewReported publishes a review.reported event.
func (p *Producer) PublishReviewReported(ctx context.Context, report *domain.AbuseReport) error {
	data := ReviewReportedData{
		ReviewID:   report.ReviewID,
		Kind:       string(report.ReviewKind),
		ReporterID: report.ReporterID,
		Reason:     report.Reason,
	}

	return p.publish(ctx, TopicReviewReported, report.ReviewID, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID string, data any) error {
	ev, err := pkgkafka.NewEvent(topic, aggregateID, AggregateTypeReview, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", aggregateID),
	)

	return nil
}
