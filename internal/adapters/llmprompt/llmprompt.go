// Package llmprompt holds the prompts chat-style LLM providers use to stand in
// for dedicated summarization and sentiment models.
package llmprompt

import (
	"fmt"
	"math"

	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/utils"
)

// SummarizerSystem is the system message for summarization requests
const SummarizerSystem = "You are an assistant that summarizes emails concisely and factually."

// ClassifierSystem is the system message for sentiment requests
const ClassifierSystem = "You are a sentiment classification system. Respond only with JSON."

// GeneratorSystem is the system message for reply generation requests
const GeneratorSystem = "You write short, professional email replies."

const summarizePromptFormat = `Summarize the following email in roughly %d to %d words.
Keep only the sender's main points and concerns. Do not add a greeting or closing.

---
%s
---

Summary:`

const sentimentPromptFormat = `Classify the overall sentiment of the following email as POSITIVE or NEGATIVE.
Respond with a JSON object containing:
- label: "POSITIVE" or "NEGATIVE"
- score: number between 0 and 1 (your confidence in the label)

Email:
%s

Respond only with the JSON object and nothing else.`

// SummarizePrompt builds the summarization prompt. The token bounds of the
// summarizer are turned into approximate word bounds.
func SummarizePrompt(text string, params core.SummaryParams) string {
	minWords := int(math.Round(float64(params.MinLength) * 0.75))
	maxWords := int(math.Round(float64(params.MaxLength) * 0.75))
	return fmt.Sprintf(summarizePromptFormat, minWords, maxWords, text)
}

// SentimentPrompt builds the sentiment classification prompt
func SentimentPrompt(text string) string {
	return fmt.Sprintf(sentimentPromptFormat, text)
}

// SummaryMaxTokens is the completion budget for a summary request
func SummaryMaxTokens(params core.SummaryParams) int {
	return params.MaxLength
}

type sentimentReply struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ParseSentiment reads the JSON object a model returned for SentimentPrompt
func ParseSentiment(reply string) (*core.Sentiment, error) {
	var r sentimentReply
	if err := utils.ExtractJSON(reply, &r); err != nil {
		return nil, err
	}

	label := core.NormalizeLabel(r.Label)
	if label == "" {
		return nil, fmt.Errorf("model reply has no sentiment label")
	}
	if r.Score < 0 || r.Score > 1 {
		return nil, fmt.Errorf("model reply score %.4f outside [0,1]", r.Score)
	}

	return &core.Sentiment{Label: label, Score: r.Score}, nil
}
