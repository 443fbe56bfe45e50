package core

import (
	"context"

	"go.uber.org/zap"
)

// ResponseComposer drafts a reply with a text generator and formats it
type ResponseComposer struct {
	generator TextGenerator
	settings  ComposerSettings
	formatter *ResponseFormatter
	logger    *zap.Logger
}

// NewResponseComposer creates a new response composer
func NewResponseComposer(
	generator TextGenerator,
	settings ComposerSettings,
	formatter *ResponseFormatter,
	logger *zap.Logger,
) *ResponseComposer {
	return &ResponseComposer{
		generator: generator,
		settings:  settings,
		formatter: formatter,
		logger:    logger,
	}
}

// Compose drafts a reply of the given type. It must not be called for ResponseNone.
func (c *ResponseComposer) Compose(ctx context.Context, text, summary string, responseType ResponseType) (string, error) {
	prompt, err := BuildPrompt(summary, responseType)
	if err != nil {
		return "", err
	}

	params := c.settings.ParamsFor(responseType)
	c.logger.Debug("Generating response",
		zap.String("response_type", string(responseType)),
		zap.Int("max_new_tokens", params.MaxNewTokens),
		zap.Int("email_length", len(text)))

	raw, err := c.generator.Generate(ctx, prompt, params)
	if err != nil {
		return "", generationError(err)
	}

	return c.formatter.Format(raw, summary), nil
}
