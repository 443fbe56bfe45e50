package di

import (
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-agent/internal/adapters/filter"
	"github.com/mikey/llm-email-agent/internal/config"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/logging"
)

// CLIFlags contains the command line flags of the analyzer
type CLIFlags struct {
	ConfigFile string
	Provider   string
	InputFile  string
	Example    bool
	Verbose    bool
	JSONLog    bool
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := loadCLIConfig(flags)
		if err != nil {
			return nil, err
		}
		if flags.ConfigFile != "" {
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	// Register CLI front end
	if err := container.Provide(func(
		service *core.EmailAgentService,
		logger *zap.Logger,
		flags *CLIFlags,
	) *filter.CliFilter {
		return filter.NewCliFilter(service, logger, out, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// loadCLIConfig reads the config file when given and applies the flag overrides
func loadCLIConfig(flags *CLIFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.ConfigFile != "" {
		cfg, err = config.NewFromFile(flags.ConfigFile)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}

	// A provider flag routes every stage through one backend. Only the
	// classifier may use a classification-only provider.
	if flags.Provider != "" {
		v := cfg.GetViper()
		v.Set("pipeline.classifier_provider", flags.Provider)
		if flags.Provider != config.ProviderLanguage {
			v.Set("pipeline.summarizer_provider", flags.Provider)
			v.Set("pipeline.generator_provider", flags.Provider)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
