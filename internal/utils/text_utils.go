package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// ErrNoJSON is returned when a model reply holds no JSON object
var ErrNoJSON = errors.New("no JSON object found in model output")

// TextProcessor prepares email text before it reaches a model provider
type TextProcessor struct {
	logger   *zap.Logger
	maxChars int
}

// NewTextProcessor creates a new TextProcessor. A maxChars of zero disables truncation.
func NewTextProcessor(logger *zap.Logger, maxChars int) *TextProcessor {
	return &TextProcessor{
		logger:   logger,
		maxChars: maxChars,
	}
}

// TruncateText cuts text to at most maxChars characters on a rune boundary
func (tp *TextProcessor) TruncateText(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	count := 0
	for i := range text {
		if count == maxChars {
			tp.logger.Debug("Text truncated",
				zap.Int("original_chars", utf8.RuneCountInString(text)),
				zap.Int("max_chars", maxChars))
			return text[:i]
		}
		count++
	}
	return text
}

// SanitizeUTF8 drops invalid UTF-8 bytes
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// Normalize returns the NFC form of text
func (tp *TextProcessor) Normalize(text string) string {
	return norm.NFC.String(text)
}

// ProcessText sanitizes, normalizes and truncates text in one operation
func (tp *TextProcessor) ProcessText(text string) string {
	text = tp.SanitizeUTF8(text)
	text = tp.Normalize(text)
	return tp.TruncateText(text, tp.maxChars)
}

// ExtractJSON decodes the outermost JSON object of a model reply into v.
// Models often wrap the object in prose or code fences.
func ExtractJSON(text string, v any) error {
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), v); err == nil {
		return nil
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to parse model output as JSON: %w", err)
	}
	return nil
}
