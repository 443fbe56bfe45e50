package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/llm-email-agent/internal/core"
	"go.uber.org/zap/zaptest"
)

// stubModel answers every model port with canned values
type stubModel struct {
	summary   string
	sentiment core.Sentiment
	reply     string
	fail      bool
}

func (m *stubModel) Summarize(ctx context.Context, text string) (string, error) {
	if m.fail {
		return "", errors.New("backend unavailable")
	}
	return m.summary, nil
}

func (m *stubModel) Classify(ctx context.Context, text string) (*core.Sentiment, error) {
	s := m.sentiment
	return &s, nil
}

func (m *stubModel) Generate(ctx context.Context, prompt string, params core.GenerationParams) (string, error) {
	return m.reply, nil
}

func newTestService(t *testing.T, m *stubModel) *core.EmailAgentService {
	logger := zaptest.NewLogger(t)
	composer := core.NewResponseComposer(m, core.DefaultComposerSettings, core.NewResponseFormatter(core.DefaultFormatRules), logger)
	return core.NewEmailAgentService(m, m, core.NewResponsePolicy(core.DefaultPolicyRules()), composer, logger)
}
