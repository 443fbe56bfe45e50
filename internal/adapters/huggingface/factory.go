package huggingface

import (
	"github.com/mikey/llm-email-agent/internal/config"
	"github.com/mikey/llm-email-agent/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Inference API clients
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Hugging Face factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClient creates a new Inference API client
func (f *Factory) CreateClient() (*Client, error) {
	hfCfg := f.cfg.GetHuggingFace()

	if hfCfg.APIToken == "" {
		f.logger.Warn("No Hugging Face API token configured, requests will be rate limited")
	}

	return NewClient(Options{
		BaseURL:            hfCfg.BaseURL,
		APIToken:           hfCfg.APIToken,
		SummarizationModel: hfCfg.SummarizationModel,
		SentimentModel:     hfCfg.SentimentModel,
		GenerationModel:    hfCfg.GenerationModel,
		Timeout:            hfCfg.Timeout,
		WaitForModel:       hfCfg.WaitForModel,
		SummaryParams:      f.cfg.GetSummarizer(),
	}, f.logger, f.textProcessor), nil
}
