package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-email-agent/internal/adapters/llmprompt"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient implements the summarizer, classifier and generator ports with Google Gemini
type GeminiClient struct {
	client        *genai.Client
	modelName     string
	summaryParams core.SummaryParams
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	summaryParams core.SummaryParams,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:        client,
		modelName:     modelName,
		summaryParams: summaryParams,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Summarize asks Gemini for a summary with temperature zero
func (c *GeminiClient) Summarize(ctx context.Context, text string) (string, error) {
	model := c.model(llmprompt.SummarizerSystem)
	model.SetTemperature(0)
	model.SetMaxOutputTokens(int32(llmprompt.SummaryMaxTokens(c.summaryParams)))

	prompt := llmprompt.SummarizePrompt(c.textProcessor.ProcessText(text), c.summaryParams)
	summary, err := c.generate(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// Classify asks Gemini for a JSON sentiment verdict
func (c *GeminiClient) Classify(ctx context.Context, text string) (*core.Sentiment, error) {
	model := c.model(llmprompt.ClassifierSystem)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	reply, err := c.generate(ctx, model, llmprompt.SentimentPrompt(c.textProcessor.ProcessText(text)))
	if err != nil {
		return nil, err
	}

	sentiment, err := llmprompt.ParseSentiment(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Gemini sentiment reply: %w", err)
	}
	return sentiment, nil
}

// Generate completes the prompt with the given sampling settings
func (c *GeminiClient) Generate(ctx context.Context, prompt string, params core.GenerationParams) (string, error) {
	model := c.model(llmprompt.GeneratorSystem)
	applyParams(model, params)

	reply, err := c.generate(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// model returns a fresh model handle so per-call settings never leak between calls
func (c *GeminiClient) model(system string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	return model
}

func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini model %s: %w", c.modelName, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", fmt.Errorf("gemini model %s: %w", c.modelName, err)
	}

	c.logger.Debug("Gemini generation finished",
		zap.String("model", c.modelName),
		zap.Int("reply_length", len(text)))

	return text, nil
}

func applyParams(model *genai.GenerativeModel, params core.GenerationParams) {
	model.SetTemperature(float32(params.Temperature))
	model.SetTopP(float32(params.TopP))
	model.SetMaxOutputTokens(int32(params.MaxNewTokens))
	model.SetCandidateCount(int32(max(params.NumReturnSequences, 1)))
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response")
	}

	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("response has no text parts")
	}
	return sb.String(), nil
}
