package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/collaborator"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/tenant"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

const maxResponseLength = 2000

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	Kind     domain.Kind
	TargetID string
	AuthorID string
	Rating   int
	Title    string
	Body     string
	Photos   []string
}

// EditReviewInput holds the parameters for editing a review.
type EditReviewInput struct {
	Kind      domain.Kind
	ReviewID  string
	ActorID   string
	ActorRole string
	Rating    int
	Title     string
	Body      string
	Photos    []string
}

// RespondInput holds the parameters for an owner response.
type RespondInput struct {
	Kind      domain.Kind
	ReviewID  string
	ActorID   string
	ActorRole string
	Response  string
}

// ReportAbuseInput holds the parameters for flagging a review.
type ReportAbuseInput struct {
	Kind       domain.Kind
	ReviewID   string
	ReporterID string
	Reason     string
	Details    string
}

// ModerationService implements the review lifecycle: submission, editing,
// deletion, owner responses, abuse reports, and moderation decisions.
type ModerationService struct {
	reviews   repository.ReviewRepository
	reports   repository.ReportRepository
	targets   repository.TargetRepository
	tenants   tenant.Provider
	flood     FloodChecker
	purchases collaborator.PurchaseVerifier
	sentiment collaborator.SentimentClassifier
	stats     StatsInvalidator
	producer  Publisher
	logger    *slog.Logger
}

// NewModerationService creates a new moderation service.
func NewModerationService(
	reviews repository.ReviewRepository,
	reports repository.ReportRepository,
	targets repository.TargetRepository,
	tenants tenant.Provider,
	flood FloodChecker,
	purchases collaborator.PurchaseVerifier,
	sentiment collaborator.SentimentClassifier,
	stats StatsInvalidator,
	producer Publisher,
	logger *slog.Logger,
) *ModerationService {
	return &ModerationService{
		reviews:   reviews,
		reports:   reports,
		targets:   targets,
		tenants:   tenants,
		flood:     flood,
		purchases: purchases,
		sentiment: sentiment,
		stats:     stats,
		producer:  producer,
		logger:    logger,
	}
}

// Submit creates a new review in pending status.
func (s *ModerationService) Submit(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	if input.AuthorID == "" {
		return nil, apperrors.AuthenticationRequired()
	}
	spec, err := domain.SpecFor(input.Kind)
	if err != nil {
		return nil, err
	}
	if input.TargetID == "" {
		return nil, apperrors.InvalidInput("target id is required")
	}

	settings, err := s.tenants.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tenant settings: %w", err)
	}
	if err := validateContent(settings, input.Rating, input.Body, input.Photos); err != nil {
		return nil, err
	}

	// Target must exist before anything is written.
	if _, err := s.targets.GetByID(ctx, input.Kind, input.TargetID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsByAuthorAndTarget(ctx, input.Kind, input.AuthorID, input.TargetID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate review: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("you have already reviewed this " + spec.Label)
	}

	if err := s.flood.Check(ctx, input.Kind, input.AuthorID, input.TargetID); err != nil {
		return nil, err
	}

	verified := false
	if input.Kind == domain.KindCommerce || input.Kind == domain.KindAgro {
		verified, err = s.purchases.VerifyPurchase(ctx, input.Kind, input.AuthorID, input.TargetID)
		if err != nil {
			// Verification is advisory; degrade to unverified.
			s.logger.WarnContext(ctx, "purchase verification failed",
				slog.String("error", err.Error()),
			)
			verified = false
		}
	}

	sentiment, err := s.sentiment.Classify(ctx, input.Body)
	if err != nil {
		s.logger.WarnContext(ctx, "sentiment classification failed",
			slog.String("error", err.Error()),
		)
		sentiment = nil
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:               uuid.New().String(),
		Kind:             input.Kind,
		TargetID:         input.TargetID,
		AuthorID:         input.AuthorID,
		Rating:           input.Rating,
		Title:            strings.TrimSpace(input.Title),
		Body:             strings.TrimSpace(input.Body),
		Status:           domain.StatusPending,
		Sentiment:        sentiment,
		VerifiedPurchase: verified,
		Photos:           input.Photos,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	submissionsTotal.WithLabelValues(string(input.Kind)).Inc()

	if err := s.producer.PublishReviewSubmitted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.submitted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("kind", string(review.Kind)),
		slog.String("target_id", review.TargetID),
		slog.Int("rating", review.Rating),
		slog.Bool("verified_purchase", review.VerifiedPurchase),
	)

	return review, nil
}

// Edit updates a review's content. Authors may edit their own reviews, which
// sends them back to the moderation queue; admins edit in place.
func (s *ModerationService) Edit(ctx context.Context, input *EditReviewInput) (*domain.Review, error) {
	if input.ActorID == "" {
		return nil, apperrors.AuthenticationRequired()
	}

	review, err := s.reviews.GetByID(ctx, input.Kind, input.ReviewID)
	if err != nil {
		return nil, err
	}

	isAdmin := input.ActorRole == RoleAdmin
	if !isAdmin && review.AuthorID != input.ActorID {
		return nil, apperrors.Forbidden("only the author may edit this review")
	}

	settings, err := s.tenants.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tenant settings: %w", err)
	}
	if err := validateContent(settings, input.Rating, input.Body, input.Photos); err != nil {
		return nil, err
	}

	oldStatus := review.Status
	wasApproved := review.Status == domain.StatusApproved
	ratingChanged := review.Rating != input.Rating

	review.Rating = input.Rating
	review.Title = strings.TrimSpace(input.Title)
	review.Body = strings.TrimSpace(input.Body)
	review.Photos = input.Photos
	review.UpdatedAt = time.Now().UTC()

	sentiment, err := s.sentiment.Classify(ctx, review.Body)
	if err == nil && sentiment != nil {
		review.Sentiment = sentiment
	}

	// Author edits re-enter the moderation queue. Dismissed reviews stay
	// dismissed; only updateStatus revives them.
	if !isAdmin && review.Status != domain.StatusDismissed {
		review.Status = domain.StatusPending
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if wasApproved && (review.Status != domain.StatusApproved || ratingChanged) {
		s.stats.Invalidate(ctx, review.Kind, review.TargetID)
	}

	if review.Status != oldStatus {
		if err := s.producer.PublishReviewStatusChanged(ctx, review, oldStatus, input.ActorID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish review.status_changed event",
				slog.String("review_id", review.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "review edited",
		slog.String("review_id", review.ID),
		slog.String("kind", string(review.Kind)),
		slog.Bool("admin_edit", isAdmin),
		slog.String("status", review.Status),
	)

	return review, nil
}

// Delete removes a review. Authors may delete their own; admins any.
func (s *ModerationService) Delete(ctx context.Context, kind domain.Kind, reviewID, actorID, actorRole string) error {
	if actorID == "" {
		return apperrors.AuthenticationRequired()
	}

	review, err := s.reviews.GetByID(ctx, kind, reviewID)
	if err != nil {
		return err
	}

	if actorRole != RoleAdmin && review.AuthorID != actorID {
		return apperrors.Forbidden("only the author may delete this review")
	}

	if err := s.reviews.Delete(ctx, kind, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if review.Status == domain.StatusApproved {
		s.stats.Invalidate(ctx, kind, review.TargetID)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", reviewID),
		slog.String("kind", string(kind)),
		slog.String("actor_id", actorID),
	)

	return nil
}

// Respond stores the target owner's response on a review, overwriting any
// previous response.
func (s *ModerationService) Respond(ctx context.Context, input *RespondInput) (*domain.Review, error) {
	if input.ActorID == "" {
		return nil, apperrors.AuthenticationRequired()
	}
	spec, err := domain.SpecFor(input.Kind)
	if err != nil {
		return nil, err
	}
	if !spec.SupportsResponse() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("the %s vertical does not support owner responses", spec.Label))
	}

	response := strings.TrimSpace(input.Response)
	if response == "" {
		return nil, apperrors.InvalidInput("response text is required")
	}
	if utf8.RuneCountInString(response) > maxResponseLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("response must be at most %d characters", maxResponseLength))
	}

	review, err := s.reviews.GetByID(ctx, input.Kind, input.ReviewID)
	if err != nil {
		return nil, err
	}

	if input.ActorRole != RoleAdmin {
		// Ownership must be proven; a failed lookup denies the operation.
		target, err := s.targets.GetByID(ctx, input.Kind, review.TargetID)
		if err != nil {
			return nil, err
		}
		if target.OwnerUserID == nil || *target.OwnerUserID != input.ActorID {
			return nil, apperrors.Forbidden("only the target owner may respond to this review")
		}
	}

	respondedAt := time.Now().UTC()
	if err := s.reviews.SetOwnerResponse(ctx, input.Kind, input.ReviewID, response, respondedAt); err != nil {
		return nil, fmt.Errorf("set owner response: %w", err)
	}

	review.OwnerResponse = &response
	review.OwnerResponseAt = &respondedAt

	s.logger.InfoContext(ctx, "owner response recorded",
		slog.String("review_id", review.ID),
		slog.String("kind", string(input.Kind)),
	)

	return review, nil
}

// UpdateStatus applies a moderation decision. Admin only; reporting a review
// never changes its status, this is the single path.
func (s *ModerationService) UpdateStatus(ctx context.Context, kind domain.Kind, reviewID, status, actorID, actorRole string) (*domain.Review, error) {
	if actorID == "" {
		return nil, apperrors.AuthenticationRequired()
	}
	if actorRole != RoleAdmin {
		return nil, apperrors.Forbidden("moderation requires the admin role")
	}
	if !domain.ValidStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("status must be one of %s, %s, %s, %s",
			domain.StatusPending, domain.StatusApproved, domain.StatusRejected, domain.StatusDismissed))
	}

	review, err := s.reviews.GetByID(ctx, kind, reviewID)
	if err != nil {
		return nil, err
	}

	oldStatus := review.Status
	if oldStatus == status {
		return review, nil
	}

	if err := s.reviews.SetStatus(ctx, kind, reviewID, status); err != nil {
		return nil, fmt.Errorf("set review status: %w", err)
	}
	review.Status = status
	review.UpdatedAt = time.Now().UTC()

	// The approved set changed in either direction.
	if oldStatus == domain.StatusApproved || status == domain.StatusApproved {
		s.stats.Invalidate(ctx, kind, review.TargetID)
	}

	moderationDecisionsTotal.WithLabelValues(string(kind), status).Inc()

	if err := s.producer.PublishReviewStatusChanged(ctx, review, oldStatus, actorID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.status_changed event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "moderation decision applied",
		slog.String("review_id", review.ID),
		slog.String("kind", string(kind)),
		slog.String("old_status", oldStatus),
		slog.String("new_status", status),
		slog.String("actor_id", actorID),
	)

	return review, nil
}

// ReportAbuse flags a review for moderator attention. The review's status
// is untouched; only the report record and counter change.
func (s *ModerationService) ReportAbuse(ctx context.Context, input *ReportAbuseInput) (*domain.AbuseReport, error) {
	if input.ReporterID == "" {
		return nil, apperrors.AuthenticationRequired()
	}
	if _, err := domain.SpecFor(input.Kind); err != nil {
		return nil, err
	}
	if !domain.ValidReportReason(input.Reason) {
		return nil, apperrors.InvalidInput("reason must be one of spam, offensive, fake, other")
	}

	if _, err := s.reviews.GetByID(ctx, input.Kind, input.ReviewID); err != nil {
		return nil, err
	}

	report := &domain.AbuseReport{
		ID:         uuid.New().String(),
		ReviewKind: input.Kind,
		ReviewID:   input.ReviewID,
		ReporterID: input.ReporterID,
		Reason:     input.Reason,
		Details:    strings.TrimSpace(input.Details),
		ReportedAt: time.Now().UTC(),
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create abuse report: %w", err)
	}

	abuseReportsTotal.WithLabelValues(string(input.Kind), input.Reason).Inc()

	if err := s.producer.PublishReviewReported(ctx, report); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.reported event",
			slog.String("review_id", input.ReviewID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "abuse report recorded",
		slog.String("review_id", input.ReviewID),
		slog.String("kind", string(input.Kind)),
		slog.String("reason", input.Reason),
	)

	return report, nil
}

// ListPending returns the moderation queue, oldest first. Admin only.
func (s *ModerationService) ListPending(ctx context.Context, kind domain.Kind, actorRole string, page, perPage int) ([]domain.Review, int, error) {
	if actorRole != RoleAdmin {
		return nil, 0, apperrors.Forbidden("the moderation queue requires the admin role")
	}

	reviews, total, err := s.reviews.ListPending(ctx, kind, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending reviews: %w", err)
	}
	return reviews, total, nil
}

// validateContent checks rating, body length, and photos against the
// tenant's review settings.
func validateContent(settings tenant.Settings, rating int, body string, photos []string) error {
	if settings.RatingRequired && rating == 0 {
		return apperrors.InvalidInput("rating is required")
	}
	if rating != 0 && (rating < 1 || rating > 5) {
		return apperrors.InvalidInput("rating must be between 1 and 5")
	}

	length := utf8.RuneCountInString(strings.TrimSpace(body))
	if length < settings.MinReviewLength {
		return apperrors.InvalidInput(fmt.Sprintf("review body must be at least %d characters", settings.MinReviewLength))
	}
	if length > settings.MaxReviewLength {
		return apperrors.InvalidInput(fmt.Sprintf("review body must be at most %d characters", settings.MaxReviewLength))
	}

	if len(photos) > 0 {
		if !settings.PhotosAllowed {
			return apperrors.InvalidInput("photos are not allowed")
		}
		if len(photos) > settings.MaxPhotos {
			return apperrors.InvalidInput(fmt.Sprintf("at most %d photos are allowed", settings.MaxPhotos))
		}
	}

	return nil
}
