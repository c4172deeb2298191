package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

const (
	defaultPerPage   = 20
	maxPerPage       = 100
	publicMaxPerPage = 50
)

// ListQuery holds list filters as they arrive from the HTTP layer.
type ListQuery struct {
	TargetID     string
	AuthorID     string
	Rating       int
	Sentiment    string
	HasPhotos    *bool
	VerifiedOnly bool
	Sort         string
	Page         int
	PerPage      int
}

// ListResult is a page of reviews with its meta.
type ListResult struct {
	Reviews    []domain.Review
	Total      int
	Page       int
	PerPage    int
	TotalPages int
	StarCounts map[int]int
}

// QueryService serves review listings for the internal and public APIs.
type QueryService struct {
	reviews repository.ReviewRepository
	stats   repository.StatsRepository
	logger  *slog.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(reviews repository.ReviewRepository, stats repository.StatsRepository, logger *slog.Logger) *QueryService {
	return &QueryService{
		reviews: reviews,
		stats:   stats,
		logger:  logger,
	}
}

// List returns reviews matching the query. Listings are always scoped to
// approved reviews; the moderation queue is the only path to anything else.
func (s *QueryService) List(ctx context.Context, kind domain.Kind, q ListQuery) (*ListResult, error) {
	return s.list(ctx, kind, q, false)
}

// ListPublic is List with the public page-size cap. The star-count meta
// covers all approved reviews of the target regardless of any rating filter.
func (s *QueryService) ListPublic(ctx context.Context, kind domain.Kind, q ListQuery) (*ListResult, error) {
	return s.list(ctx, kind, q, true)
}

func (s *QueryService) list(ctx context.Context, kind domain.Kind, q ListQuery, public bool) (*ListResult, error) {
	if _, err := domain.SpecFor(kind); err != nil {
		return nil, err
	}
	if q.Sort != "" && !repository.ValidSort(q.Sort) {
		return nil, apperrors.InvalidInput("sort must be one of newest, oldest, highest, lowest, helpful")
	}
	if q.Rating != 0 && (q.Rating < 1 || q.Rating > 5) {
		return nil, apperrors.InvalidInput("rating filter must be between 1 and 5")
	}

	page := q.Page
	if page <= 0 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	limit := maxPerPage
	if public {
		limit = publicMaxPerPage
	}
	if perPage > limit {
		perPage = limit
	}

	filter := repository.ReviewFilter{
		VerifiedOnly: q.VerifiedOnly,
		Sort:         q.Sort,
		Page:         page,
		PerPage:      perPage,
	}
	if q.TargetID != "" {
		filter.TargetID = &q.TargetID
	}
	if q.AuthorID != "" {
		filter.AuthorID = &q.AuthorID
	}
	if q.Rating != 0 {
		filter.Rating = &q.Rating
	}
	if q.Sentiment != "" {
		filter.Sentiment = &q.Sentiment
	}
	filter.HasPhotos = q.HasPhotos

	// Only approved reviews are ever listed, internal or public.
	status := domain.StatusApproved
	filter.Status = &status

	reviews, total, err := s.reviews.List(ctx, kind, filter)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	result := &ListResult{
		Reviews: reviews,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
	result.TotalPages = total / perPage
	if total%perPage > 0 {
		result.TotalPages++
	}

	if q.TargetID != "" {
		counts, err := s.stats.StarCounts(ctx, kind, q.TargetID)
		if err != nil {
			return nil, fmt.Errorf("get star counts: %w", err)
		}
		result.StarCounts = counts
	}

	return result, nil
}

// Get returns a single review for internal callers.
func (s *QueryService) Get(ctx context.Context, kind domain.Kind, id string) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, kind, id)
}

// GetPublic returns a single approved review. Anything not approved is
// indistinguishable from absent.
func (s *QueryService) GetPublic(ctx context.Context, kind domain.Kind, id string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if review.Status != domain.StatusApproved {
		return nil, apperrors.NotFound("review", id)
	}
	return review, nil
}
