package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-email-agent/internal/adapters/llmprompt"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/utils"
	"go.uber.org/zap"
)

// InvokeModelAPI is the part of the Bedrock runtime client the adapter uses
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient implements the summarizer, classifier and generator ports with Amazon Bedrock
type BedrockClient struct {
	client        InvokeModelAPI
	modelID       string
	summaryParams core.SummaryParams
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// sampling is the model-independent subset of inference settings
type sampling struct {
	maxTokens   int
	temperature float64
	topP        float64
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client InvokeModelAPI,
	modelID string,
	summaryParams core.SummaryParams,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
		summaryParams: summaryParams,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Summarize asks the model for a summary with temperature zero
func (c *BedrockClient) Summarize(ctx context.Context, text string) (string, error) {
	prompt := llmprompt.SummarizerSystem + "\n\n" +
		llmprompt.SummarizePrompt(c.textProcessor.ProcessText(text), c.summaryParams)

	summary, err := c.invoke(ctx, prompt, sampling{
		maxTokens: llmprompt.SummaryMaxTokens(c.summaryParams),
		topP:      1,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// Classify asks the model for a JSON sentiment verdict
func (c *BedrockClient) Classify(ctx context.Context, text string) (*core.Sentiment, error) {
	prompt := llmprompt.ClassifierSystem + "\n\n" +
		llmprompt.SentimentPrompt(c.textProcessor.ProcessText(text))

	reply, err := c.invoke(ctx, prompt, sampling{maxTokens: 50, topP: 1})
	if err != nil {
		return nil, err
	}

	sentiment, err := llmprompt.ParseSentiment(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Bedrock sentiment reply: %w", err)
	}
	return sentiment, nil
}

// Generate completes the prompt with the given sampling settings
func (c *BedrockClient) Generate(ctx context.Context, prompt string, params core.GenerationParams) (string, error) {
	reply, err := c.invoke(ctx, llmprompt.GeneratorSystem+"\n\n"+prompt, sampling{
		maxTokens:   params.MaxNewTokens,
		temperature: params.Temperature,
		topP:        params.TopP,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (c *BedrockClient) invoke(ctx context.Context, prompt string, s sampling) (string, error) {
	payload, err := buildPayload(c.modelID, prompt, s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model %s: %w", c.modelID, err)
	}

	text, err := parseCompletion(c.modelID, resp.Body)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Bedrock invocation finished",
		zap.String("model", c.modelID),
		zap.Int("reply_length", len(text)))

	return text, nil
}

// buildPayload encodes the request body in the format of the model family
func buildPayload(modelID, prompt string, s sampling) ([]byte, error) {
	switch {
	case isAnthropicModel(modelID):
		return json.Marshal(map[string]interface{}{
			"prompt":               "\n\nHuman: " + prompt + "\n\nAssistant:",
			"max_tokens_to_sample": s.maxTokens,
			"temperature":          s.temperature,
			"top_p":                s.topP,
		})
	case isAmazonTitanModel(modelID):
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": s.maxTokens,
				"temperature":   s.temperature,
				"topP":          s.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  s.maxTokens,
			"temperature": s.temperature,
			"top_p":       s.topP,
		})
	}
}

// parseCompletion extracts the generated text from a response body
func parseCompletion(modelID string, body []byte) (string, error) {
	switch {
	case isAnthropicModel(modelID):
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		if claudeResp.Completion == "" {
			return "", fmt.Errorf("empty response from Claude model %s", modelID)
		}
		return claudeResp.Completion, nil

	case isAmazonTitanModel(modelID):
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 || titanResp.Results[0].OutputText == "" {
			return "", fmt.Errorf("empty response from Titan model %s", modelID)
		}
		return titanResp.Results[0].OutputText, nil

	default:
		var genericResp struct {
			Output     string `json:"output"`
			Text       string `json:"text"`
			Response   string `json:"response"`
			Generation string `json:"generation"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		for _, candidate := range []string{genericResp.Output, genericResp.Text, genericResp.Response, genericResp.Generation} {
			if candidate != "" {
				return candidate, nil
			}
		}
		return string(body), nil
	}
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func isAnthropicModel(modelID string) bool {
	return strings.HasPrefix(modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func isAmazonTitanModel(modelID string) bool {
	return strings.HasPrefix(modelID, "amazon.titan")
}
