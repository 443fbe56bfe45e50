package factory

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/mikey/llm-email-agent/internal/adapters/bedrock"
	"github.com/mikey/llm-email-agent/internal/adapters/gemini"
	"github.com/mikey/llm-email-agent/internal/adapters/huggingface"
	"github.com/mikey/llm-email-agent/internal/adapters/language"
	"github.com/mikey/llm-email-agent/internal/adapters/openai"
	"github.com/mikey/llm-email-agent/internal/config"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/utils"
	"go.uber.org/zap"
)

// ModelFactory creates the model backends of the pipeline stages. Stages
// that share a provider share one client.
type ModelFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor

	mu      sync.Mutex
	clients map[string]any
}

// NewModelFactory creates a new model factory
func NewModelFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ModelFactory {
	return &ModelFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		clients:       make(map[string]any),
	}
}

// CreateSummarizer creates the summarizer selected by pipeline.summarizer_provider
func (f *ModelFactory) CreateSummarizer() (core.Summarizer, error) {
	provider := f.cfg.GetPipeline().SummarizerProvider
	client, err := f.client(provider)
	if err != nil {
		return nil, err
	}
	summarizer, ok := client.(core.Summarizer)
	if !ok {
		return nil, fmt.Errorf("provider %s cannot summarize", provider)
	}
	return summarizer, nil
}

// CreateClassifier creates the sentiment classifier selected by pipeline.classifier_provider
func (f *ModelFactory) CreateClassifier() (core.SentimentClassifier, error) {
	provider := f.cfg.GetPipeline().ClassifierProvider
	client, err := f.client(provider)
	if err != nil {
		return nil, err
	}
	classifier, ok := client.(core.SentimentClassifier)
	if !ok {
		return nil, fmt.Errorf("provider %s cannot classify sentiment", provider)
	}
	return classifier, nil
}

// CreateGenerator creates the text generator selected by pipeline.generator_provider
func (f *ModelFactory) CreateGenerator() (core.TextGenerator, error) {
	provider := f.cfg.GetPipeline().GeneratorProvider
	client, err := f.client(provider)
	if err != nil {
		return nil, err
	}
	generator, ok := client.(core.TextGenerator)
	if !ok {
		return nil, fmt.Errorf("provider %s cannot generate text", provider)
	}
	return generator, nil
}

// Close releases every client that holds a connection
func (f *ModelFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for provider, client := range f.clients {
		if closer, ok := client.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %s client: %w", provider, err))
			}
		}
	}
	f.clients = make(map[string]any)
	return errors.Join(errs...)
}

func (f *ModelFactory) client(provider string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[provider]; ok {
		return client, nil
	}

	client, err := f.create(provider)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Created model client", zap.String("provider", provider))
	f.clients[provider] = client
	return client, nil
}

func (f *ModelFactory) create(provider string) (any, error) {
	switch provider {
	case config.ProviderHuggingFace:
		return huggingface.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
	case config.ProviderOpenAI:
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
	case config.ProviderGemini:
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
	case config.ProviderBedrock:
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
	case config.ProviderLanguage:
		return language.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", provider)
	}
}
