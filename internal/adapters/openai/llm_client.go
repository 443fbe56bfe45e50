package openai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mikey/llm-email-agent/internal/adapters/llmprompt"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// deterministicTemperature stands in for zero, which the request omits when empty
const deterministicTemperature = math.SmallestNonzeroFloat32

// OpenAIClient implements the summarizer, classifier and generator ports with chat completions
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	summaryParams core.SummaryParams
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	summaryParams core.SummaryParams,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		summaryParams: summaryParams,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Summarize asks the chat model for a summary with sampling disabled
func (c *OpenAIClient) Summarize(ctx context.Context, text string) (string, error) {
	prompt := llmprompt.SummarizePrompt(c.textProcessor.ProcessText(text), c.summaryParams)

	summary, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmprompt.SummarizerSystem},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   llmprompt.SummaryMaxTokens(c.summaryParams),
		N:           1,
		Temperature: deterministicTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// Classify asks the chat model for a JSON sentiment verdict
func (c *OpenAIClient) Classify(ctx context.Context, text string) (*core.Sentiment, error) {
	prompt := llmprompt.SentimentPrompt(c.textProcessor.ProcessText(text))

	reply, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmprompt.ClassifierSystem},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   50,
		N:           1,
		Temperature: deterministicTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}

	sentiment, err := llmprompt.ParseSentiment(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI sentiment reply: %w", err)
	}
	return sentiment, nil
}

// Generate completes the prompt with the given sampling settings.
// The repetition penalty maps onto the frequency penalty.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, params core.GenerationParams) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmprompt.GeneratorSystem},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:        params.MaxNewTokens,
		Temperature:      float32(params.Temperature),
		TopP:             float32(params.TopP),
		FrequencyPenalty: frequencyPenalty(params.RepetitionPenalty),
		N:                max(params.NumReturnSequences, 1),
	}

	reply, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI model %s: %w", c.modelName, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty response from OpenAI model %s", c.modelName)
	}

	c.logger.Debug("OpenAI completion finished",
		zap.String("model", c.modelName),
		zap.String("id", resp.ID),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

// frequencyPenalty converts a multiplicative repetition penalty (1 = none)
// into the additive range OpenAI accepts
func frequencyPenalty(repetitionPenalty float64) float32 {
	if repetitionPenalty <= 0 {
		return 0
	}
	return float32(math.Max(-2, math.Min(2, repetitionPenalty-1)))
}
