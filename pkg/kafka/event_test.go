package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	ReviewID string `json:"review_id"`
	Rating   int    `json:"rating"`
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("reviews.review.submitted", "review-1", "review", "review-engine", testPayload{
		ReviewID: "review-1",
		Rating:   5,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "reviews.review.submitted", event.EventType)
	assert.Equal(t, "review-1", event.AggregateID)
	assert.Equal(t, "review", event.AggregateType)
	assert.Equal(t, "review-engine", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEventRoundTrip(t *testing.T) {
	event, err := NewEvent("reviews.review.vote_recorded", "review-1", "review", "review-engine", testPayload{
		ReviewID: "review-1",
		Rating:   4,
	})
	require.NoError(t, err)
	event.WithCorrelationID("corr-123")

	encoded, err := event.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(encoded), "corr-123")

	var payload testPayload
	require.NoError(t, event.UnmarshalData(&payload))
	assert.Equal(t, "review-1", payload.ReviewID)
	assert.Equal(t, 4, payload.Rating)
}

func TestNewEventRejectsUnmarshalableData(t *testing.T) {
	_, err := NewEvent("reviews.review.submitted", "review-1", "review", "review-engine", make(chan int))
	assert.Error(t, err)
}
