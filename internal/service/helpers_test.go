package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/tenant"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func defaultSettings() tenant.Settings {
	return tenant.Settings{
		MinReviewLength: 10,
		MaxReviewLength: 5000,
		RatingRequired:  true,
		PhotosAllowed:   true,
		MaxPhotos:       5,
	}
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func approvedReview(kind domain.Kind) *domain.Review {
	return &domain.Review{
		ID:              "review-1",
		Kind:            kind,
		TargetID:        "target-1",
		AuthorID:        "user-1",
		Rating:          4,
		Title:           "Solid experience",
		Body:            "Good communication and quick turnaround overall.",
		Status:          domain.StatusApproved,
		HelpfulCount:    2,
		NotHelpfulCount: 1,
		WilsonScore:     0.2,
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Review, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, kind domain.Kind, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, kind, filter)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) Delete(ctx context.Context, kind domain.Kind, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *mockReviewRepository) SetStatus(ctx context.Context, kind domain.Kind, id, status string) error {
	args := m.Called(ctx, kind, id, status)
	return args.Error(0)
}

func (m *mockReviewRepository) SetOwnerResponse(ctx context.Context, kind domain.Kind, id, response string, respondedAt time.Time) error {
	args := m.Called(ctx, kind, id, response, respondedAt)
	return args.Error(0)
}

func (m *mockReviewRepository) ListPending(ctx context.Context, kind domain.Kind, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, kind, page, perPage)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) ExistsByAuthorAndTarget(ctx context.Context, kind domain.Kind, authorID, targetID string) (bool, error) {
	args := m.Called(ctx, kind, authorID, targetID)
	return args.Bool(0), args.Error(1)
}

// --- Mock Vote Repository ---

type mockVoteRepository struct {
	mock.Mock
}

func (m *mockVoteRepository) Apply(ctx context.Context, kind domain.Kind, reviewID, userID string, helpful bool) (*domain.VoteResult, error) {
	args := m.Called(ctx, kind, reviewID, userID, helpful)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VoteResult), args.Error(1)
}

func (m *mockVoteRepository) GetUserVote(ctx context.Context, kind domain.Kind, reviewID, userID string) (*domain.Vote, error) {
	args := m.Called(ctx, kind, reviewID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vote), args.Error(1)
}

// --- Mock Report Repository ---

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) Create(ctx context.Context, report *domain.AbuseReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockReportRepository) CountForReview(ctx context.Context, kind domain.Kind, reviewID string) (int, error) {
	args := m.Called(ctx, kind, reviewID)
	return args.Int(0), args.Error(1)
}

// --- Mock Target Repository ---

type mockTargetRepository struct {
	mock.Mock
}

func (m *mockTargetRepository) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.TargetEntity, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TargetEntity), args.Error(1)
}

// --- Mock Stats Repository ---

type mockStatsRepository struct {
	mock.Mock
}

func (m *mockStatsRepository) GetRatingStats(ctx context.Context, kind domain.Kind, targetID string) (*domain.RatingStats, error) {
	args := m.Called(ctx, kind, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingStats), args.Error(1)
}

func (m *mockStatsRepository) StarCounts(ctx context.Context, kind domain.Kind, targetID string) (map[int]int, error) {
	args := m.Called(ctx, kind, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

// --- Mock Analytics Repository ---

type mockAnalyticsRepository struct {
	mock.Mock
}

func (m *mockAnalyticsRepository) StatusCounts(ctx context.Context, kind domain.Kind) (int, int, int, int, error) {
	args := m.Called(ctx, kind)
	return args.Int(0), args.Int(1), args.Int(2), args.Int(3), args.Error(4)
}

func (m *mockAnalyticsRepository) AverageApprovedRating(ctx context.Context, kind domain.Kind) (float64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockAnalyticsRepository) GlobalStarCounts(ctx context.Context, kind domain.Kind) (map[int]int, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *mockAnalyticsRepository) DailyTrend(ctx context.Context, kind domain.Kind, days int) ([]repository.TrendPoint, error) {
	args := m.Called(ctx, kind, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.TrendPoint), args.Error(1)
}

func (m *mockAnalyticsRepository) ResponseCounts(ctx context.Context, kind domain.Kind) (int, int, error) {
	args := m.Called(ctx, kind)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *mockAnalyticsRepository) Recent(ctx context.Context, kind domain.Kind, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockAnalyticsRepository) ExportRows(ctx context.Context, kind domain.Kind) ([]repository.AnalyticsRow, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.AnalyticsRow), args.Error(1)
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReviewSubmitted(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockPublisher) PublishReviewStatusChanged(ctx context.Context, review *domain.Review, oldStatus, actorID string) error {
	args := m.Called(ctx, review, oldStatus, actorID)
	return args.Error(0)
}

func (m *mockPublisher) PublishReviewVoteRecorded(ctx context.Context, kind domain.Kind, voterID string, result *domain.VoteResult) error {
	args := m.Called(ctx, kind, voterID, result)
	return args.Error(0)
}

func (m *mockPublisher) PublishReviewReported(ctx context.Context, report *domain.AbuseReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// --- Mock Flood Checker ---

type mockFloodChecker struct {
	mock.Mock
}

func (m *mockFloodChecker) Check(ctx context.Context, kind domain.Kind, authorID, targetID string) error {
	args := m.Called(ctx, kind, authorID, targetID)
	return args.Error(0)
}

// --- Mock Stats Invalidator ---

type mockStatsInvalidator struct {
	mock.Mock
}

func (m *mockStatsInvalidator) Invalidate(ctx context.Context, kind domain.Kind, targetID string) {
	m.Called(ctx, kind, targetID)
}

// --- Mock Purchase Verifier ---

type mockPurchaseVerifier struct {
	mock.Mock
}

func (m *mockPurchaseVerifier) VerifyPurchase(ctx context.Context, kind domain.Kind, authorID, targetID string) (bool, error) {
	args := m.Called(ctx, kind, authorID, targetID)
	return args.Bool(0), args.Error(1)
}

// --- Mock Sentiment Classifier ---

type mockSentimentClassifier struct {
	mock.Mock
}

func (m *mockSentimentClassifier) Classify(ctx context.Context, text string) (*string, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

// --- Mock Stats Cache ---

type mockStatsCache struct {
	mock.Mock
}

func (m *mockStatsCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockStatsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockStatsCache) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
