package language

import (
	"context"
	"fmt"
	"math"

	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Classifier implements the sentiment port with Google Cloud Natural Language
type Classifier struct {
	client        *language.Client
	neutralBand   float64
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifier creates a Natural Language client. Without a credentials
// file the application default credentials are used.
func NewClassifier(
	ctx context.Context,
	credentialsFile string,
	neutralBand float64,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Classifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := language.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Natural Language client: %w", err)
	}

	return &Classifier{
		client:        client,
		neutralBand:   neutralBand,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Natural Language client
func (c *Classifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify analyzes the document sentiment and maps its score onto a label
func (c *Classifier) Classify(ctx context.Context, text string) (*core.Sentiment, error) {
	resp, err := c.client.AnalyzeSentiment(ctx, sentimentRequest(c.textProcessor.ProcessText(text)))
	if err != nil {
		return nil, fmt.Errorf("natural language sentiment request failed: %w", err)
	}
	if resp.GetDocumentSentiment() == nil {
		return nil, fmt.Errorf("natural language response has no document sentiment")
	}

	score := resp.GetDocumentSentiment().GetScore()
	c.logger.Debug("Document sentiment analyzed",
		zap.Float32("score", score),
		zap.Float32("magnitude", resp.GetDocumentSentiment().GetMagnitude()))

	return toSentiment(float64(score), c.neutralBand), nil
}

func sentimentRequest(text string) *languagepb.AnalyzeSentimentRequest {
	return &languagepb.AnalyzeSentimentRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{
				Content: text,
			},
			Type: languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	}
}

// toSentiment maps a score in [-1,1] to a label. Scores inside the neutral
// band are NEUTRAL with confidence 1-|score|; polar labels use |score|.
func toSentiment(score, neutralBand float64) *core.Sentiment {
	score = math.Max(-1, math.Min(1, score))
	magnitude := math.Abs(score)

	switch {
	case score >= neutralBand && magnitude > 0:
		return &core.Sentiment{Label: core.LabelPositive, Score: magnitude}
	case score <= -neutralBand && magnitude > 0:
		return &core.Sentiment{Label: core.LabelNegative, Score: magnitude}
	default:
		return &core.Sentiment{Label: core.LabelNeutral, Score: 1 - magnitude}
	}
}
