package core

import (
	"strings"
	"time"
)

// SentimentLabel is the categorical output of a sentiment classifier
type SentimentLabel string

const (
	LabelPositive SentimentLabel = "POSITIVE"
	LabelNegative SentimentLabel = "NEGATIVE"
	LabelNeutral  SentimentLabel = "NEUTRAL"
)

// NormalizeLabel upper-cases and trims a provider label
func NormalizeLabel(label string) SentimentLabel {
	return SentimentLabel(strings.ToUpper(strings.TrimSpace(label)))
}

// ResponseType controls the length and tone of a drafted reply
type ResponseType string

const (
	ResponseNone     ResponseType = "none"
	ResponseBrief    ResponseType = "brief"
	ResponseDetailed ResponseType = "detailed"
)

// Email represents an email message handed over by a front end
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// Sentiment is a label with its confidence score in [0,1]
type Sentiment struct {
	Label SentimentLabel
	Score float64
}

// AnalysisResult holds the summary and sentiment of one email
type AnalysisResult struct {
	Summary    string         `json:"summary"`
	Label      SentimentLabel `json:"sentiment_label"`
	Score      float64        `json:"sentiment_score"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
}

// ResponseDecision says whether a reply is needed and which kind
type ResponseDecision struct {
	NeedsResponse bool         `json:"needs_response"`
	ResponseType  ResponseType `json:"response_type"`
}

// ProcessResult is the full outcome of one pass through the pipeline
type ProcessResult struct {
	ID          string           `json:"id"`
	Analysis    *AnalysisResult  `json:"analysis"`
	Decision    ResponseDecision `json:"decision"`
	Response    string           `json:"response,omitempty"`
	ProcessedAt time.Time        `json:"processed_at"`
	Duration    time.Duration    `json:"duration_ns"`
}
