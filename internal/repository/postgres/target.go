package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/database"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

// TargetRepository reads the reviewed entities' tables. These tables are
// owned by other services; only id and ownership are read here.
type TargetRepository struct {
	pool database.DBTX
}

// NewTargetRepository creates a PostgreSQL-backed target repository.
func NewTargetRepository(pool database.DBTX) *TargetRepository {
	return &TargetRepository{pool: pool}
}

// GetByID resolves a target entity and its owner for the given kind.
func (r *TargetRepository) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.TargetEntity, error) {
	spec, err := domain.SpecFor(kind)
	if err != nil {
		return nil, err
	}

	target := &domain.TargetEntity{Kind: kind}

	query := fmt.Sprintf("SELECT id, owner_user_id FROM %s WHERE id = $1", spec.TargetTable)

	ctx, end := database.TraceQuery(ctx, "target.get", spec.TargetTable)
	err = r.pool.QueryRow(ctx, query, id).Scan(&target.ID, &target.OwnerUserID)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("target", id)
		}
		return nil, fmt.Errorf("get target: %w", err)
	}

	return target, nil
}
