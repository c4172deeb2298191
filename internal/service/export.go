package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

var csvHeader = []string{"Vertical", "ID", "Rating", "Status", "Created", "Helpful Count", "Has Response"}

// ExportService streams review data as CSV for the admin dashboard.
type ExportService struct {
	repo   repository.AnalyticsRepository
	logger *slog.Logger
}

// NewExportService creates a new export service.
func NewExportService(repo repository.AnalyticsRepository, logger *slog.Logger) *ExportService {
	return &ExportService{
		repo:   repo,
		logger: logger,
	}
}

// WriteCSV streams reviews of one kind, or all kinds when kind is nil, to w.
// Admin only.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer, actorRole string, kind *domain.Kind) error {
	if actorRole != RoleAdmin {
		return apperrors.Forbidden("export requires the admin role")
	}

	kinds := domain.Kinds()
	if kind != nil {
		if _, err := domain.SpecFor(*kind); err != nil {
			return err
		}
		kinds = []domain.Kind{*kind}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	written := 0
	for _, k := range kinds {
		spec, err := domain.SpecFor(k)
		if err != nil {
			return err
		}

		rows, err := s.repo.ExportRows(ctx, k)
		if err != nil {
			return fmt.Errorf("export rows for %s: %w", k, err)
		}

		for _, row := range rows {
			record := []string{
				spec.Label,
				row.ID,
				strconv.Itoa(row.Rating),
				row.Status,
				row.CreatedAt.UTC().Format(time.RFC3339),
				strconv.Itoa(row.HelpfulCount),
				formatBool(row.HasResponse),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
			written++
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	s.logger.InfoContext(ctx, "review export completed",
		slog.Int("rows", written),
	)

	return nil
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
