package language

import (
	"context"

	"github.com/mikey/llm-email-agent/internal/config"
	"github.com/mikey/llm-email-agent/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Natural Language sentiment classifiers
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Natural Language factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClient creates a new Classifier
func (f *Factory) CreateClient() (*Classifier, error) {
	langCfg := f.cfg.GetLanguage()

	return NewClassifier(
		context.Background(),
		langCfg.CredentialsFile,
		langCfg.NeutralBand,
		f.logger,
		f.textProcessor,
	)
}
