package core

import (
	"context"
)

// Summarizer reduces text to a bounded-length synopsis
type Summarizer interface {
	// Summarize returns a deterministic summary of text
	Summarize(ctx context.Context, text string) (string, error)
}

// SentimentClassifier assigns a sentiment label and confidence to text
type SentimentClassifier interface {
	// Classify returns exactly one label with a score in [0,1]
	Classify(ctx context.Context, text string) (*Sentiment, error)
}

// TextGenerator produces a completion for a prompt
type TextGenerator interface {
	// Generate returns the generated text without the prompt echoed back
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// SummaryParams bounds the summarizer output
type SummaryParams struct {
	MinLength     int
	MaxLength     int
	NumBeams      int
	LengthPenalty float64
}

// DefaultSummaryParams are the beam-search settings of the reference summarizer
var DefaultSummaryParams = SummaryParams{
	MinLength:     30,
	MaxLength:     150,
	NumBeams:      4,
	LengthPenalty: 0.8,
}

// GenerationParams are the sampling settings for a single generation call
type GenerationParams struct {
	MaxNewTokens       int
	Temperature        float64
	TopP               float64
	RepetitionPenalty  float64
	NumReturnSequences int
	ReturnFullText     bool
}
