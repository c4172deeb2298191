package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/httpclient"
)

// SentimentClassifier labels review text. Classification is advisory; a nil
// label just means unclassified.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (*string, error)
}

// SentimentServiceClassifier calls the text-analysis service over a
// circuit-broken HTTP client.
type SentimentServiceClassifier struct {
	client  *httpclient.BreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewSentimentServiceClassifier creates a classifier backed by the
// text-analysis service.
func NewSentimentServiceClassifier(client *httpclient.BreakerClient, baseURL string, logger *slog.Logger) *SentimentServiceClassifier {
	return &SentimentServiceClassifier{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Label string `json:"label"`
}

// Classify labels the text as positive, neutral, or negative. Any failure
// degrades to an unclassified review rather than blocking the submission.
func (c *SentimentServiceClassifier) Classify(ctx context.Context, text string) (*string, error) {
	payload, err := json.Marshal(sentimentRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/internal/v1/sentiment", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "sentiment service unavailable",
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "sentiment service returned non-200",
			slog.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	var body sentimentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil
	}
	if body.Label == "" {
		return nil, nil
	}

	return &body.Label, nil
}

// NoopClassifier never labels anything.
type NoopClassifier struct{}

// Classify always returns nil.
func (NoopClassifier) Classify(context.Context, string) (*string, error) {
	return nil, nil
}
