package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmailAgentService runs the summarize, classify, decide and compose pipeline
type EmailAgentService struct {
	summarizer Summarizer
	classifier SentimentClassifier
	policy     *ResponsePolicy
	composer   *ResponseComposer
	logger     *zap.Logger
}

// NewEmailAgentService creates a new email agent service
func NewEmailAgentService(
	summarizer Summarizer,
	classifier SentimentClassifier,
	policy *ResponsePolicy,
	composer *ResponseComposer,
	logger *zap.Logger,
) *EmailAgentService {
	return &EmailAgentService{
		summarizer: summarizer,
		classifier: classifier,
		policy:     policy,
		composer:   composer,
		logger:     logger,
	}
}

// Analyze summarizes the email and classifies its sentiment
func (s *EmailAgentService) Analyze(ctx context.Context, text string) (*AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, summarizationError(ErrEmptyText)
	}

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return nil, summarizationError(err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, summarizationError(fmt.Errorf("summarizer returned an empty summary"))
	}

	sentiment, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return nil, classificationError(err)
	}
	if err := validateSentiment(sentiment); err != nil {
		return nil, classificationError(err)
	}

	return &AnalysisResult{
		Summary:    summary,
		Label:      NormalizeLabel(string(sentiment.Label)),
		Score:      sentiment.Score,
		AnalyzedAt: time.Now(),
	}, nil
}

// Decide applies the response policy
func (s *EmailAgentService) Decide(label SentimentLabel, score float64) ResponseDecision {
	return s.policy.Decide(label, score)
}

// Compose drafts a reply; only call it when Decide says a response is needed
func (s *EmailAgentService) Compose(ctx context.Context, text, summary string, responseType ResponseType) (string, error) {
	return s.composer.Compose(ctx, text, summary, responseType)
}

// Process runs the whole pipeline for one email. Any stage failure aborts it.
func (s *EmailAgentService) Process(ctx context.Context, text string) (*ProcessResult, error) {
	start := time.Now()
	id := uuid.NewString()

	analysis, err := s.Analyze(ctx, text)
	if err != nil {
		s.logger.Error("Failed to analyze email", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	decision := s.Decide(analysis.Label, analysis.Score)

	result := &ProcessResult{
		ID:       id,
		Analysis: analysis,
		Decision: decision,
	}

	if decision.NeedsResponse {
		response, err := s.Compose(ctx, text, analysis.Summary, decision.ResponseType)
		if err != nil {
			s.logger.Error("Failed to compose response", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		result.Response = response
	}

	result.ProcessedAt = time.Now()
	result.Duration = time.Since(start)

	s.logger.Info("Processed email",
		zap.String("id", id),
		zap.String("sentiment", string(analysis.Label)),
		zap.Float64("score", analysis.Score),
		zap.Bool("needs_response", decision.NeedsResponse),
		zap.String("response_type", string(decision.ResponseType)),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func validateSentiment(sentiment *Sentiment) error {
	if sentiment == nil {
		return fmt.Errorf("classifier returned no result")
	}
	if NormalizeLabel(string(sentiment.Label)) == "" {
		return fmt.Errorf("classifier returned an empty label")
	}
	if sentiment.Score < 0 || sentiment.Score > 1 {
		return fmt.Errorf("classifier score %.4f outside [0,1]", sentiment.Score)
	}
	return nil
}
