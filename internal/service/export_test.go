package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

func TestWriteCSV_SingleKind(t *testing.T) {
	repo := new(mockAnalyticsRepository)
	svc := NewExportService(repo, newTestLogger())

	created := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	repo.On("ExportRows", context.Background(), domain.KindCommerce).Return([]repository.AnalyticsRow{
		{Kind: domain.KindCommerce, ID: "review-1", Rating: 5, Status: "approved", CreatedAt: created, HelpfulCount: 7, HasResponse: true},
		{Kind: domain.KindCommerce, ID: "review-2", Rating: 2, Status: "rejected", CreatedAt: created, HelpfulCount: 0, HasResponse: false},
	}, nil)

	var buf bytes.Buffer
	kind := domain.KindCommerce
	err := svc.WriteCSV(context.Background(), &buf, RoleAdmin, &kind)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Vertical,ID,Rating,Status,Created,Helpful Count,Has Response", lines[0])
	assert.Equal(t, "Commerce,review-1,5,approved,2026-03-10T09:30:00Z,7,Yes", lines[1])
	assert.Equal(t, "Commerce,review-2,2,rejected,2026-03-10T09:30:00Z,0,No", lines[2])
}

func TestWriteCSV_AllKinds(t *testing.T) {
	repo := new(mockAnalyticsRepository)
	svc := NewExportService(repo, newTestLogger())

	created := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	for _, kind := range domain.Kinds() {
		rows := []repository.AnalyticsRow{}
		if kind == domain.KindSession {
			rows = append(rows, repository.AnalyticsRow{
				Kind: kind, ID: "review-s", Rating: 4, Status: "approved",
				CreatedAt: created, HelpfulCount: 1, HasResponse: false,
			})
		}
		repo.On("ExportRows", context.Background(), kind).Return(rows, nil)
	}

	var buf bytes.Buffer
	err := svc.WriteCSV(context.Background(), &buf, RoleAdmin, nil)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Session,review-s,4,approved,2026-03-10T09:30:00Z,1,No", lines[1])
	repo.AssertExpectations(t)
}

func TestWriteCSV_RequiresAdminRole(t *testing.T) {
	svc := NewExportService(new(mockAnalyticsRepository), newTestLogger())

	var buf bytes.Buffer
	err := svc.WriteCSV(context.Background(), &buf, "user", nil)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Zero(t, buf.Len())
}

func TestWriteCSV_UnsupportedKind(t *testing.T) {
	svc := NewExportService(new(mockAnalyticsRepository), newTestLogger())

	var buf bytes.Buffer
	kind := domain.Kind("hotel")
	err := svc.WriteCSV(context.Background(), &buf, RoleAdmin, &kind)

	assert.ErrorIs(t, err, apperrors.ErrUnsupportedKind)
}
