package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-agent/internal/config"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/factory"
	"github.com/mikey/llm-email-agent/internal/logging"
	"github.com/mikey/llm-email-agent/internal/ports"
	"github.com/mikey/llm-email-agent/internal/utils"
	"github.com/mikey/llm-email-agent/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := config.New()
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	// Register bypass domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetServer().BypassDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register email front end
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// providePipeline registers the model backends and the core pipeline.
// It expects *config.Config and *zap.Logger to be provided already.
func providePipeline(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewModelFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register model ports
	if err := container.Provide(func(f *factory.ModelFactory) (core.Summarizer, error) {
		return f.CreateSummarizer()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ModelFactory) (core.SentimentClassifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ModelFactory) (core.TextGenerator, error) {
		return f.CreateGenerator()
	}); err != nil {
		return err
	}

	// Register policy and composer
	if err := container.Provide(func(cfg *config.Config) *core.ResponsePolicy {
		return core.NewResponsePolicy(cfg.GetPolicy())
	}); err != nil {
		return err
	}
	if err := container.Provide(func(
		cfg *config.Config,
		generator core.TextGenerator,
		logger *zap.Logger,
	) *core.ResponseComposer {
		formatter := core.NewResponseFormatter(cfg.GetFormatRules())
		return core.NewResponseComposer(generator, cfg.GetComposer(), formatter, logger)
	}); err != nil {
		return err
	}

	// Register email agent service
	return container.Provide(core.NewEmailAgentService)
}
