package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeRuntime struct {
	body  []byte
	err   error
	input *bedrockruntime.InvokeModelInput
}

func (f *fakeRuntime) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func newTestClient(t *testing.T, modelID string, runtime *fakeRuntime) *BedrockClient {
	logger := zaptest.NewLogger(t)
	return NewBedrockClient(runtime, modelID, core.DefaultSummaryParams, logger, utils.NewTextProcessor(logger, 5000))
}

func decodePayload(t *testing.T, input *bedrockruntime.InvokeModelInput) map[string]any {
	var payload map[string]any
	require.NoError(t, json.Unmarshal(input.Body, &payload))
	return payload
}

func TestBedrockClient_ClaudeGenerate(t *testing.T) {
	runtime := &fakeRuntime{body: []byte(`{"completion":" Dear Team, thanks. "}`)}
	client := newTestClient(t, "anthropic.claude-v2", runtime)

	reply, err := client.Generate(context.Background(), "Write a reply", core.DefaultComposerSettings.ParamsFor(core.ResponseBrief))
	require.NoError(t, err)
	assert.Equal(t, "Dear Team, thanks.", reply)

	assert.Equal(t, "anthropic.claude-v2", aws.ToString(runtime.input.ModelId))
	payload := decodePayload(t, runtime.input)
	assert.Contains(t, payload["prompt"], "\n\nHuman: ")
	assert.Contains(t, payload["prompt"], "Write a reply")
	assert.Contains(t, payload["prompt"], "\n\nAssistant:")
	assert.EqualValues(t, 100, payload["max_tokens_to_sample"])
	assert.EqualValues(t, 0.7, payload["temperature"])
}

func TestBedrockClient_TitanClassify(t *testing.T) {
	runtime := &fakeRuntime{body: []byte(`{"results":[{"outputText":"{\"label\":\"POSITIVE\",\"score\":0.97}"}]}`)}
	client := newTestClient(t, "amazon.titan-text-express-v1", runtime)

	sentiment, err := client.Classify(context.Background(), "Great work, team!")
	require.NoError(t, err)
	assert.Equal(t, core.Sentiment{Label: core.LabelPositive, Score: 0.97}, *sentiment)

	payload := decodePayload(t, runtime.input)
	assert.Contains(t, payload["inputText"], "Great work, team!")
	cfg, ok := payload["textGenerationConfig"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 0, cfg["temperature"])
}

func TestBedrockClient_GenericSummarize(t *testing.T) {
	runtime := &fakeRuntime{body: []byte(`{"generation":"Timeline concerns."}`)}
	client := newTestClient(t, "meta.llama3-8b-instruct-v1:0", runtime)

	summary, err := client.Summarize(context.Background(), "We are late.")
	require.NoError(t, err)
	assert.Equal(t, "Timeline concerns.", summary)

	payload := decodePayload(t, runtime.input)
	assert.EqualValues(t, 150, payload["max_tokens"])
}

func TestBedrockClient_InvokeError(t *testing.T) {
	runtime := &fakeRuntime{err: errors.New("throttled")}
	client := newTestClient(t, "anthropic.claude-v2", runtime)

	_, err := client.Summarize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.claude-v2")
	assert.Contains(t, err.Error(), "throttled")
}

func TestParseCompletion(t *testing.T) {
	_, err := parseCompletion("anthropic.claude-v2", []byte(`{"completion":""}`))
	assert.Error(t, err)

	_, err = parseCompletion("amazon.titan-text-lite-v1", []byte(`{"results":[]}`))
	assert.Error(t, err)

	text, err := parseCompletion("cohere.command", []byte(`{"other":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"other":1}`, text)
}
