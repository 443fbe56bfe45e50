package factory

import (
	"testing"

	"github.com/mikey/llm-email-agent/internal/adapters/filter"
	"github.com/mikey/llm-email-agent/internal/adapters/huggingface"
	"github.com/mikey/llm-email-agent/internal/adapters/openai"
	"github.com/mikey/llm-email-agent/internal/adapters/web"
	"github.com/mikey/llm-email-agent/internal/config"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestConfig(t *testing.T, overrides map[string]any) *config.Config {
	t.Helper()
	v := config.NewEmptyViper()
	for k, val := range overrides {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func newModelFactory(t *testing.T, cfg *config.Config) *ModelFactory {
	logger := zaptest.NewLogger(t)
	tp := NewTextProcessorFactory(cfg, logger).CreateTextProcessor()
	return NewModelFactory(cfg, logger, tp)
}

func TestModelFactory_SharesClientAcrossStages(t *testing.T) {
	f := newModelFactory(t, newTestConfig(t, nil))
	t.Cleanup(func() { _ = f.Close() })

	summarizer, err := f.CreateSummarizer()
	require.NoError(t, err)
	classifier, err := f.CreateClassifier()
	require.NoError(t, err)
	generator, err := f.CreateGenerator()
	require.NoError(t, err)

	hf, ok := summarizer.(*huggingface.Client)
	require.True(t, ok)
	assert.Same(t, hf, classifier)
	assert.Same(t, hf, generator)
}

func TestModelFactory_MixedProviders(t *testing.T) {
	f := newModelFactory(t, newTestConfig(t, map[string]any{
		"pipeline.generator_provider": config.ProviderOpenAI,
		"openai.api_key":              "test-key",
	}))

	summarizer, err := f.CreateSummarizer()
	require.NoError(t, err)
	generator, err := f.CreateGenerator()
	require.NoError(t, err)

	assert.IsType(t, &huggingface.Client{}, summarizer)
	assert.IsType(t, &openai.OpenAIClient{}, generator)
	assert.NoError(t, f.Close())
}

func TestModelFactory_UnsupportedProvider(t *testing.T) {
	f := newModelFactory(t, newTestConfig(t, map[string]any{
		"pipeline.summarizer_provider": "nope",
	}))

	_, err := f.CreateSummarizer()
	assert.ErrorContains(t, err, "unsupported model provider: nope")
}

func TestTextProcessorFactory(t *testing.T) {
	cfg := newTestConfig(t, map[string]any{"pipeline.max_input_chars": 10})
	tp := NewTextProcessorFactory(cfg, zaptest.NewLogger(t)).CreateTextProcessor()

	assert.Equal(t, "0123456789", tp.ProcessText("0123456789abcdef"))
}

func TestFilterFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)
	service := core.NewEmailAgentService(nil, nil, core.NewResponsePolicy(core.DefaultPolicyRules()), nil, logger)
	bypass := whitelist.NewChecker(nil, logger)

	tests := []struct {
		frontend string
		expected any
		wantErr  bool
	}{
		{config.FrontendWeb, &web.Server{}, false},
		{config.FrontendPostfix, &filter.PostfixFilter{}, false},
		{"milter", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.frontend, func(t *testing.T) {
			cfg := newTestConfig(t, map[string]any{"server.frontend": tt.frontend})

			f, err := NewFilterFactory(cfg, logger, service, bypass).CreateEmailFilter()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expected, f)
		})
	}
}
