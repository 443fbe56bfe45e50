package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/utils"
	"go.uber.org/zap"
)

// Client calls the Hugging Face Inference API. One client serves the
// summarization, sentiment and text-generation models.
type Client struct {
	httpClient         *http.Client
	baseURL            string
	apiToken           string
	summarizationModel string
	sentimentModel     string
	generationModel    string
	waitForModel       bool
	summaryParams      core.SummaryParams
	logger             *zap.Logger
	textProcessor      *utils.TextProcessor
}

// Options configures a Client
type Options struct {
	BaseURL            string
	APIToken           string
	SummarizationModel string
	SentimentModel     string
	GenerationModel    string
	Timeout            time.Duration
	WaitForModel       bool
	SummaryParams      core.SummaryParams
}

// NewClient creates a new Inference API client
func NewClient(opts Options, logger *zap.Logger, textProcessor *utils.TextProcessor) *Client {
	return &Client{
		httpClient:         &http.Client{Timeout: opts.Timeout},
		baseURL:            strings.TrimRight(opts.BaseURL, "/"),
		apiToken:           opts.APIToken,
		summarizationModel: opts.SummarizationModel,
		sentimentModel:     opts.SentimentModel,
		generationModel:    opts.GenerationModel,
		waitForModel:       opts.WaitForModel,
		summaryParams:      opts.SummaryParams,
		logger:             logger,
		textProcessor:      textProcessor,
	}
}

type request struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    requestOptions `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type apiError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

type summaryOutput struct {
	SummaryText string `json:"summary_text"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type generationOutput struct {
	GeneratedText string `json:"generated_text"`
}

// Summarize runs the summarization model with beam search and no sampling
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	params := map[string]any{
		"min_length":     c.summaryParams.MinLength,
		"max_length":     c.summaryParams.MaxLength,
		"num_beams":      c.summaryParams.NumBeams,
		"length_penalty": c.summaryParams.LengthPenalty,
		"do_sample":      false,
	}

	var out []summaryOutput
	if err := c.call(ctx, c.summarizationModel, c.textProcessor.ProcessText(text), params, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty summarization output from %s", c.summarizationModel)
	}

	return strings.TrimSpace(out[0].SummaryText), nil
}

// Classify runs the sentiment model and returns the top-scoring label
func (c *Client) Classify(ctx context.Context, text string) (*core.Sentiment, error) {
	var raw json.RawMessage
	if err := c.call(ctx, c.sentimentModel, c.textProcessor.ProcessText(text), nil, &raw); err != nil {
		return nil, err
	}

	scores, err := parseLabelScores(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse output of %s: %w", c.sentimentModel, err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("empty classification output from %s", c.sentimentModel)
	}

	top := scores[0]
	for _, s := range scores[1:] {
		if s.Score > top.Score {
			top = s
		}
	}

	return &core.Sentiment{
		Label: core.NormalizeLabel(top.Label),
		Score: top.Score,
	}, nil
}

// Generate runs the text-generation model with sampling enabled
func (c *Client) Generate(ctx context.Context, prompt string, params core.GenerationParams) (string, error) {
	p := map[string]any{
		"max_new_tokens":       params.MaxNewTokens,
		"temperature":          params.Temperature,
		"top_p":                params.TopP,
		"repetition_penalty":   params.RepetitionPenalty,
		"num_return_sequences": params.NumReturnSequences,
		"return_full_text":     params.ReturnFullText,
		"do_sample":            true,
	}

	var out []generationOutput
	if err := c.call(ctx, c.generationModel, prompt, p, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty generation output from %s", c.generationModel)
	}

	text := out[0].GeneratedText
	if params.ReturnFullText {
		text = strings.TrimPrefix(text, prompt)
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) call(ctx context.Context, model, inputs string, params map[string]any, out any) error {
	payload, err := json.Marshal(request{
		Inputs:     inputs,
		Parameters: params,
		Options:    requestOptions{WaitForModel: c.waitForModel, UseCache: true},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}

	url := c.baseURL + "/models/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call model %s: %w", model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", model, err)
	}

	c.logger.Debug("Inference API call finished",
		zap.String("model", model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("model %s returned status %s: %s", model, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("model %s returned status %s", model, resp.Status)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", model, err)
	}
	return nil
}

// parseLabelScores accepts both the nested [[{label,score}]] and the flat
// [{label,score}] shapes returned by text-classification models
func parseLabelScores(raw json.RawMessage) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}
