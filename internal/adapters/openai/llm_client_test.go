package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/utils"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, reply string, status int) (*OpenAIClient, *openai.ChatCompletionRequest) {
	captured := &openai.ChatCompletionRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID: "chatcmpl-1",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
			},
		})
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = server.URL + "/v1"

	logger := zaptest.NewLogger(t)
	client := NewOpenAIClient(openai.NewClientWithConfig(cfg), "gpt-4o-mini", core.DefaultSummaryParams,
		logger, utils.NewTextProcessor(logger, 5000))
	return client, captured
}

func TestOpenAIClient_Summarize(t *testing.T) {
	client, req := newTestClient(t, "  Concerns about the timeline.  ", http.StatusOK)

	summary, err := client.Summarize(context.Background(), "We are behind schedule.")
	require.NoError(t, err)

	assert.Equal(t, "Concerns about the timeline.", summary)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 150, req.MaxTokens)
	assert.Less(t, req.Temperature, float32(0.001))
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[1].Content, "We are behind schedule.")
}

func TestOpenAIClient_Classify(t *testing.T) {
	client, req := newTestClient(t, `{"label":"negative","score":0.88}`, http.StatusOK)

	sentiment, err := client.Classify(context.Background(), "This is unacceptable.")
	require.NoError(t, err)

	assert.Equal(t, core.Sentiment{Label: core.LabelNegative, Score: 0.88}, *sentiment)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
}

func TestOpenAIClient_ClassifyBadReply(t *testing.T) {
	client, _ := newTestClient(t, "It sounds upset.", http.StatusOK)

	_, err := client.Classify(context.Background(), "This is unacceptable.")
	assert.Error(t, err)
}

func TestOpenAIClient_Generate(t *testing.T) {
	client, req := newTestClient(t, "Dear Team,\n\nWe hear you.\n\nBest regards,", http.StatusOK)

	params := core.DefaultComposerSettings.ParamsFor(core.ResponseBrief)
	reply, err := client.Generate(context.Background(), "Write a reply", params)
	require.NoError(t, err)

	assert.Equal(t, "Dear Team,\n\nWe hear you.\n\nBest regards,", reply)
	assert.Equal(t, 100, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.InDelta(t, 0.9, req.TopP, 1e-6)
	assert.InDelta(t, 0.2, req.FrequencyPenalty, 1e-6)
	assert.Equal(t, 1, req.N)
}

func TestOpenAIClient_APIError(t *testing.T) {
	client, _ := newTestClient(t, "", http.StatusTooManyRequests)

	_, err := client.Generate(context.Background(), "Write a reply", core.GenerationParams{MaxNewTokens: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpt-4o-mini")
}

func TestFrequencyPenalty(t *testing.T) {
	assert.InDelta(t, 0.0, frequencyPenalty(1.0), 1e-6)
	assert.InDelta(t, 0.2, frequencyPenalty(1.2), 1e-6)
	assert.InDelta(t, 2.0, frequencyPenalty(5), 1e-6)
	assert.InDelta(t, 0.0, frequencyPenalty(0), 1e-6)
}
