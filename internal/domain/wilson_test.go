package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWilsonScore_NoVotes(t *testing.T) {
	assert.Equal(t, 0.0, WilsonScore(0, 0))
}

func TestWilsonScore_KnownValues(t *testing.T) {
	tests := []struct {
		name       string
		helpful    int
		notHelpful int
		expected   float64
	}{
		{"single helpful vote", 1, 0, 0.2065},
		{"single unhelpful vote", 0, 1, 0.0},
		{"ten of ten helpful", 10, 0, 0.7225},
		{"split votes", 5, 5, 0.2366},
		{"large sample mostly helpful", 90, 10, 0.8256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WilsonScore(tt.helpful, tt.notHelpful), 0.0001)
		})
	}
}

func TestWilsonScore_MoreEvidenceRanksHigher(t *testing.T) {
	// Same proportion, larger sample gives a tighter lower bound.
	small := WilsonScore(9, 1)
	large := WilsonScore(90, 10)
	assert.Greater(t, large, small)
}

func TestWilsonScore_Bounds(t *testing.T) {
	for _, pair := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {100, 0}, {0, 100}, {50, 50}} {
		score := WilsonScore(pair[0], pair[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.Less(t, score, 1.0)
	}
}

func TestWilsonScore_UnhelpfulVotesLowerScore(t *testing.T) {
	assert.Greater(t, WilsonScore(10, 0), WilsonScore(10, 5))
}
