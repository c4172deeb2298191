// Package flood throttles review submissions per author and target over a
// rolling 24-hour window. Counters live in redis so every instance shares
// them; deleting a review does not reset the window.
package flood

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

const window = 24 * time.Hour

// Guard enforces the submission limit per author and target.
type Guard struct {
	client *redis.Client
	limit  int
	logger *slog.Logger
}

// NewGuard creates a submission flood guard. limit is the maximum number of
// submissions per (author, target) pair in 24 hours, normally 1.
func NewGuard(client *redis.Client, limit int, logger *slog.Logger) *Guard {
	return &Guard{
		client: client,
		limit:  limit,
		logger: logger,
	}
}

func key(kind domain.Kind, authorID, targetID string) string {
	return fmt.Sprintf("review_flood:%s:%s:%s", kind, authorID, targetID)
}

// Check counts the submission and rejects it once the author exceeds the
// limit for this target. The first submission in a window starts the 24h
// TTL. When redis is unavailable the submission is allowed; flood control is
// a throttle, not a correctness guarantee.
func (g *Guard) Check(ctx context.Context, kind domain.Kind, authorID, targetID string) error {
	k := key(kind, authorID, targetID)

	count, err := g.client.Incr(ctx, k).Result()
	if err != nil {
		g.logger.WarnContext(ctx, "flood counter unavailable, allowing submission",
			slog.String("key", k),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if count == 1 {
		if err := g.client.Expire(ctx, k, window).Err(); err != nil {
			g.logger.WarnContext(ctx, "failed to set flood counter TTL",
				slog.String("key", k),
				slog.String("error", err.Error()),
			)
		}
	}

	if count > int64(g.limit) {
		return apperrors.RateLimited("you recently submitted a review for this target, try again later")
	}

	return nil
}
