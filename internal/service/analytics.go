package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

const (
	minTrendDays     = 7
	maxTrendDays     = 365
	defaultTrendDays = 30
	recentLimit      = 10
)

// DashboardSummary is the cross-vertical headline block.
type DashboardSummary struct {
	TotalReviews  int     `json:"total_reviews"`
	Approved      int     `json:"approved"`
	Pending       int     `json:"pending"`
	Rejected      int     `json:"rejected"`
	AverageRating float64 `json:"average_rating"`
	ApprovalRate  float64 `json:"approval_rate"`
}

// ResponseRate summarizes owner engagement over approved reviews.
type ResponseRate struct {
	WithResponse    int     `json:"with_response"`
	WithoutResponse int     `json:"without_response"`
	Rate            float64 `json:"rate"`
}

// Dashboard is the admin analytics payload.
type Dashboard struct {
	Summary         DashboardSummary               `json:"summary"`
	Verticals       []repository.VerticalBreakdown `json:"verticals"`
	StarCounts      map[int]int                    `json:"star_counts"`
	Trend           []repository.TrendPoint        `json:"trend"`
	TrendDays       int                            `json:"trend_days"`
	ResponseRate    ResponseRate                   `json:"response_rate"`
	ModerationQueue int                            `json:"moderation_queue"`
	Recent          []domain.Review                `json:"recent"`
}

// AnalyticsService assembles the admin dashboard from per-kind aggregates.
type AnalyticsService struct {
	repo   repository.AnalyticsRepository
	logger *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(repo repository.AnalyticsRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		logger: logger,
	}
}

// Dashboard builds the analytics dashboard over all verticals. Admin only.
func (s *AnalyticsService) Dashboard(ctx context.Context, actorRole string, days int) (*Dashboard, error) {
	if actorRole != RoleAdmin {
		return nil, apperrors.Forbidden("analytics requires the admin role")
	}

	if days == 0 {
		days = defaultTrendDays
	}
	if days < minTrendDays || days > maxTrendDays {
		return nil, apperrors.InvalidInput(fmt.Sprintf("trend window must be between %d and %d days", minTrendDays, maxTrendDays))
	}

	dash := &Dashboard{
		StarCounts: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		TrendDays:  days,
	}

	ratingWeightedSum := 0.0
	ratedApproved := 0
	trendByDate := map[string]*repository.TrendPoint{}
	trendWeight := map[string]float64{}

	for _, kind := range domain.Kinds() {
		spec, err := domain.SpecFor(kind)
		if err != nil {
			return nil, err
		}

		total, approved, pending, rejected, err := s.repo.StatusCounts(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("status counts for %s: %w", kind, err)
		}

		avg, err := s.repo.AverageApprovedRating(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("average rating for %s: %w", kind, err)
		}

		dash.Summary.TotalReviews += total
		dash.Summary.Approved += approved
		dash.Summary.Pending += pending
		dash.Summary.Rejected += rejected
		ratingWeightedSum += avg * float64(approved)
		ratedApproved += approved

		dash.Verticals = append(dash.Verticals, repository.VerticalBreakdown{
			Kind:          kind,
			Label:         spec.Label,
			Total:         total,
			Approved:      approved,
			Pending:       pending,
			AverageRating: avg,
		})

		stars, err := s.repo.GlobalStarCounts(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("star counts for %s: %w", kind, err)
		}
		for star, count := range stars {
			dash.StarCounts[star] += count
		}

		points, err := s.repo.DailyTrend(ctx, kind, days)
		if err != nil {
			return nil, fmt.Errorf("trend for %s: %w", kind, err)
		}
		for _, p := range points {
			existing, ok := trendByDate[p.Date]
			if !ok {
				cp := p
				trendByDate[p.Date] = &cp
				trendWeight[p.Date] = p.AverageRating * float64(p.Count)
				continue
			}
			existing.Count += p.Count
			trendWeight[p.Date] += p.AverageRating * float64(p.Count)
		}

		withResp, withoutResp, err := s.repo.ResponseCounts(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("response counts for %s: %w", kind, err)
		}
		dash.ResponseRate.WithResponse += withResp
		dash.ResponseRate.WithoutResponse += withoutResp

		recent, err := s.repo.Recent(ctx, kind, recentLimit)
		if err != nil {
			return nil, fmt.Errorf("recent reviews for %s: %w", kind, err)
		}
		dash.Recent = append(dash.Recent, recent...)
	}

	if ratedApproved > 0 {
		dash.Summary.AverageRating = math.Round(ratingWeightedSum/float64(ratedApproved)*100) / 100
	}
	if dash.Summary.TotalReviews > 0 {
		dash.Summary.ApprovalRate = math.Round(float64(dash.Summary.Approved)/float64(dash.Summary.TotalReviews)*1000) / 10
	}
	dash.ModerationQueue = dash.Summary.Pending

	respTotal := dash.ResponseRate.WithResponse + dash.ResponseRate.WithoutResponse
	if respTotal > 0 {
		dash.ResponseRate.Rate = math.Round(float64(dash.ResponseRate.WithResponse)/float64(respTotal)*1000) / 10
	}

	for date, p := range trendByDate {
		if p.Count > 0 {
			p.AverageRating = math.Round(trendWeight[date]/float64(p.Count)*100) / 100
		}
		dash.Trend = append(dash.Trend, *p)
	}
	sort.Slice(dash.Trend, func(i, j int) bool { return dash.Trend[i].Date < dash.Trend[j].Date })

	sort.Slice(dash.Recent, func(i, j int) bool {
		return dash.Recent[i].CreatedAt.After(dash.Recent[j].CreatedAt)
	})
	if len(dash.Recent) > recentLimit {
		dash.Recent = dash.Recent[:recentLimit]
	}

	return dash, nil
}
