package core

import (
	"fmt"
)

// ComposerSettings are the generation budgets and sampling settings for replies
type ComposerSettings struct {
	DetailedMaxTokens int
	BriefMaxTokens    int
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
}

// DefaultComposerSettings match the reference text-generation call
var DefaultComposerSettings = ComposerSettings{
	DetailedMaxTokens: 200,
	BriefMaxTokens:    100,
	Temperature:       0.7,
	TopP:              0.9,
	RepetitionPenalty: 1.2,
}

const detailedPromptFormat = `Generate a positive and professional email response to this email summary: '%s'.
Format the response as a proper email with:
1. A warm greeting
2. Positive acknowledgment of the concerns
3. Constructive solutions and next steps
4. A positive closing
Keep the tone optimistic, professional, and solution-oriented.
Focus on positive outcomes and collaboration.
Response:`

const briefPromptFormat = `Generate a warm and positive email response to this email summary: '%s'.
Format as a proper email with greeting and closing.
Keep it to 2-3 sentences.
Make it appreciative and encouraging.
Response:`

// BuildPrompt returns the generation prompt for a response type
func BuildPrompt(summary string, responseType ResponseType) (string, error) {
	switch responseType {
	case ResponseDetailed:
		return fmt.Sprintf(detailedPromptFormat, summary), nil
	case ResponseBrief:
		return fmt.Sprintf(briefPromptFormat, summary), nil
	case ResponseNone:
		return "", ErrNoResponseNeeded
	default:
		return "", fmt.Errorf("unsupported response type: %s", responseType)
	}
}

// ParamsFor returns the generation parameters for a response type
func (s ComposerSettings) ParamsFor(responseType ResponseType) GenerationParams {
	maxTokens := s.BriefMaxTokens
	if responseType == ResponseDetailed {
		maxTokens = s.DetailedMaxTokens
	}
	return GenerationParams{
		MaxNewTokens:       maxTokens,
		Temperature:        s.Temperature,
		TopP:               s.TopP,
		RepetitionPenalty:  s.RepetitionPenalty,
		NumReturnSequences: 1,
		ReturnFullText:     false,
	}
}
