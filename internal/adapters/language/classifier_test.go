package language

import (
	"testing"

	"cloud.google.com/go/language/apiv2/languagepb"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestToSentiment(t *testing.T) {
	tests := []struct {
		score         float64
		expectedLabel core.SentimentLabel
		expectedScore float64
	}{
		{score: 0.95, expectedLabel: core.LabelPositive, expectedScore: 0.95},
		{score: 0.25, expectedLabel: core.LabelPositive, expectedScore: 0.25},
		{score: 0.1, expectedLabel: core.LabelNeutral, expectedScore: 0.9},
		{score: 0, expectedLabel: core.LabelNeutral, expectedScore: 1},
		{score: -0.1, expectedLabel: core.LabelNeutral, expectedScore: 0.9},
		{score: -0.6, expectedLabel: core.LabelNegative, expectedScore: 0.6},
		{score: -1.5, expectedLabel: core.LabelNegative, expectedScore: 1},
	}

	for _, tt := range tests {
		s := toSentiment(tt.score, 0.25)
		assert.Equal(t, tt.expectedLabel, s.Label, "score %.2f", tt.score)
		assert.InDelta(t, tt.expectedScore, s.Score, 1e-9, "score %.2f", tt.score)
	}
}

func TestToSentimentZeroBand(t *testing.T) {
	assert.Equal(t, core.LabelNeutral, toSentiment(0, 0).Label)
	assert.Equal(t, core.LabelPositive, toSentiment(0.01, 0).Label)
	assert.Equal(t, core.LabelNegative, toSentiment(-0.01, 0).Label)
}

func TestSentimentRequest(t *testing.T) {
	req := sentimentRequest("I am unhappy.")

	assert.Equal(t, "I am unhappy.", req.GetDocument().GetContent())
	assert.Equal(t, languagepb.Document_PLAIN_TEXT, req.GetDocument().GetType())
	assert.Equal(t, languagepb.EncodingType_UTF8, req.GetEncodingType())
}
