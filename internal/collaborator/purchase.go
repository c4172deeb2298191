// Package collaborator holds HTTP clients for the services this engine
// consults during review submission.
package collaborator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/domain"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/httpclient"
)

// PurchaseVerifier reports whether the author actually bought from the
// target. Only the commerce and agro verticals have purchase records.
type PurchaseVerifier interface {
	VerifyPurchase(ctx context.Context, kind domain.Kind, authorID, targetID string) (bool, error)
}

// OrderServiceVerifier checks purchases against the order service over a
// circuit-broken HTTP client.
type OrderServiceVerifier struct {
	client  *httpclient.BreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewOrderServiceVerifier creates a verifier backed by the order service.
func NewOrderServiceVerifier(client *httpclient.BreakerClient, baseURL string, logger *slog.Logger) *OrderServiceVerifier {
	return &OrderServiceVerifier{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

type purchaseResponse struct {
	Purchased bool `json:"purchased"`
}

// VerifyPurchase asks the order service whether the author has a completed
// purchase from the target. Any failure degrades to unverified rather than
// blocking the submission.
func (v *OrderServiceVerifier) VerifyPurchase(ctx context.Context, kind domain.Kind, authorID, targetID string) (bool, error) {
	url := fmt.Sprintf("%s/internal/v1/purchases/check?kind=%s&buyer_id=%s&seller_id=%s",
		v.baseURL, kind, authorID, targetID)

	resp, err := v.client.Get(ctx, url)
	if err != nil {
		v.logger.WarnContext(ctx, "purchase verification unavailable",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.WarnContext(ctx, "purchase verification returned non-200",
			slog.Int("status", resp.StatusCode),
		)
		return false, nil
	}

	var body purchaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		v.logger.WarnContext(ctx, "purchase verification response unreadable",
			slog.String("error", err.Error()),
		)
		return false, nil
	}

	return body.Purchased, nil
}

// NoopVerifier always reports unverified. Used for verticals without
// purchase records and in tests.
type NoopVerifier struct{}

// VerifyPurchase always returns false.
func (NoopVerifier) VerifyPurchase(context.Context, domain.Kind, string, string) (bool, error) {
	return false, nil
}
