package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/llm-email-agent/")
	v.AddConfigPath("$HOME/.llm-email-agent")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("EMAIL_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit config file
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("EMAIL_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Pipeline defaults
	v.SetDefault("pipeline.summarizer_provider", ProviderHuggingFace)
	v.SetDefault("pipeline.classifier_provider", ProviderHuggingFace)
	v.SetDefault("pipeline.generator_provider", ProviderHuggingFace)
	v.SetDefault("pipeline.max_input_chars", 5000)

	// Summarizer defaults
	v.SetDefault("summarizer.min_length", core.DefaultSummaryParams.MinLength)
	v.SetDefault("summarizer.max_length", core.DefaultSummaryParams.MaxLength)
	v.SetDefault("summarizer.num_beams", core.DefaultSummaryParams.NumBeams)
	v.SetDefault("summarizer.length_penalty", core.DefaultSummaryParams.LengthPenalty)

	// Response policy defaults
	v.SetDefault("policy.negative_label", string(core.LabelNegative))
	v.SetDefault("policy.positive_label", string(core.LabelPositive))
	v.SetDefault("policy.brief_threshold", core.DefaultBriefThreshold)

	// Response composer defaults
	v.SetDefault("composer.detailed_max_tokens", core.DefaultComposerSettings.DetailedMaxTokens)
	v.SetDefault("composer.brief_max_tokens", core.DefaultComposerSettings.BriefMaxTokens)
	v.SetDefault("composer.temperature", core.DefaultComposerSettings.Temperature)
	v.SetDefault("composer.top_p", core.DefaultComposerSettings.TopP)
	v.SetDefault("composer.repetition_penalty", core.DefaultComposerSettings.RepetitionPenalty)
	v.SetDefault("composer.greetings", core.DefaultFormatRules.Greetings)
	v.SetDefault("composer.default_greeting", core.DefaultFormatRules.DefaultGreeting)
	v.SetDefault("composer.closings", core.DefaultFormatRules.Closings)
	v.SetDefault("composer.default_closing", core.DefaultFormatRules.DefaultClosing)
	v.SetDefault("composer.positive_phrases", core.DefaultFormatRules.PositivePhrases)
	v.SetDefault("composer.relevance_check", core.DefaultFormatRules.RelevanceCheck)

	// Hugging Face defaults
	v.SetDefault("huggingface.api_token", "")
	v.SetDefault("huggingface.base_url", "https://router.huggingface.co/hf-inference")
	v.SetDefault("huggingface.summarization_model", "facebook/bart-large-cnn")
	v.SetDefault("huggingface.sentiment_model", "distilbert-base-uncased-finetuned-sst-2-english")
	v.SetDefault("huggingface.generation_model", "gpt2")
	v.SetDefault("huggingface.timeout", "60s")
	v.SetDefault("huggingface.wait_for_model", true)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")

	// Cloud Natural Language defaults
	v.SetDefault("language.credentials_file", "")
	v.SetDefault("language.neutral_band", 0.25)

	// Server defaults
	v.SetDefault("server.frontend", "web")
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.bypass_domains", []string{})
	v.SetDefault("server.headers.sentiment", "X-Email-Sentiment")
	v.SetDefault("server.headers.score", "X-Email-Sentiment-Score")
	v.SetDefault("server.headers.needs_response", "X-Email-Needs-Response")
	v.SetDefault("server.headers.response_type", "X-Email-Response-Type")
	v.SetDefault("server.headers.summary", "X-Email-Summary")
	v.SetDefault("server.postfix.address", "127.0.0.1")
	v.SetDefault("server.postfix.port", 10026)
	v.SetDefault("server.postfix.enabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
