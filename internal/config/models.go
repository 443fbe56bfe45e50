package config

import (
	"time"

	"github.com/mikey/llm-email-agent/internal/core"
)

// Model provider names accepted by the pipeline.*_provider keys
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
	ProviderBedrock     = "bedrock"
	ProviderLanguage    = "language"
)

// Front end names accepted by server.frontend
const (
	FrontendWeb     = "web"
	FrontendPostfix = "postfix"
)

// PipelineConfig selects a provider per pipeline stage
type PipelineConfig struct {
	SummarizerProvider string `validate:"required,oneof=huggingface openai gemini bedrock"`
	ClassifierProvider string `validate:"required,oneof=huggingface openai gemini bedrock language"`
	GeneratorProvider  string `validate:"required,oneof=huggingface openai gemini bedrock"`
	MaxInputChars      int    `validate:"gte=0"`
}

// HuggingFaceConfig represents the configuration for the Hugging Face Inference API
type HuggingFaceConfig struct {
	APIToken           string
	BaseURL            string `validate:"required,url"`
	SummarizationModel string `validate:"required"`
	SentimentModel     string `validate:"required"`
	GenerationModel    string `validate:"required"`
	Timeout            time.Duration
	WaitForModel       bool
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string `validate:"omitempty,url"`
	ModelName string `validate:"required"`
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey    string
	ModelName string `validate:"required"`
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region  string `validate:"required"`
	ModelID string `validate:"required"`
}

// LanguageConfig represents the configuration for Google Cloud Natural Language
type LanguageConfig struct {
	CredentialsFile string
	NeutralBand     float64 `validate:"gte=0,lt=1"`
}

// HeaderNames are the headers the postfix front end stamps on messages
type HeaderNames struct {
	Sentiment     string `validate:"required"`
	Score         string `validate:"required"`
	NeedsResponse string `validate:"required"`
	ResponseType  string `validate:"required"`
	Summary       string `validate:"required"`
}

// PostfixConfig represents the re-injection target of the content filter
type PostfixConfig struct {
	Address string
	Port    int `validate:"gte=0,lte=65535"`
	Enabled bool
}

// ServerConfig represents the front end configuration
type ServerConfig struct {
	Frontend      string `validate:"required,oneof=web postfix"`
	ListenAddress string `validate:"required"`
	BypassDomains []string
	Headers       HeaderNames
	Postfix       PostfixConfig
}

// GetPipeline returns the pipeline configuration
func (c *Config) GetPipeline() PipelineConfig {
	return PipelineConfig{
		SummarizerProvider: c.GetString("pipeline.summarizer_provider"),
		ClassifierProvider: c.GetString("pipeline.classifier_provider"),
		GeneratorProvider:  c.GetString("pipeline.generator_provider"),
		MaxInputChars:      c.GetInt("pipeline.max_input_chars"),
	}
}

// GetSummarizer returns the summary length bounds
func (c *Config) GetSummarizer() core.SummaryParams {
	return core.SummaryParams{
		MinLength:     c.GetInt("summarizer.min_length"),
		MaxLength:     c.GetInt("summarizer.max_length"),
		NumBeams:      c.GetInt("summarizer.num_beams"),
		LengthPenalty: c.GetFloat64("summarizer.length_penalty"),
	}
}

// GetPolicy returns the response policy rules
func (c *Config) GetPolicy() core.PolicyRules {
	return core.PolicyRules{
		NegativeLabel:  core.NormalizeLabel(c.GetString("policy.negative_label")),
		PositiveLabel:  core.NormalizeLabel(c.GetString("policy.positive_label")),
		BriefThreshold: c.GetFloat64("policy.brief_threshold"),
	}
}

// GetComposer returns the generation budgets and sampling settings
func (c *Config) GetComposer() core.ComposerSettings {
	return core.ComposerSettings{
		DetailedMaxTokens: c.GetInt("composer.detailed_max_tokens"),
		BriefMaxTokens:    c.GetInt("composer.brief_max_tokens"),
		Temperature:       c.GetFloat64("composer.temperature"),
		TopP:              c.GetFloat64("composer.top_p"),
		RepetitionPenalty: c.GetFloat64("composer.repetition_penalty"),
	}
}

// GetFormatRules returns the reply post-processing rules
func (c *Config) GetFormatRules() core.FormatRules {
	return core.FormatRules{
		Greetings:       c.GetStringSlice("composer.greetings"),
		DefaultGreeting: c.GetString("composer.default_greeting"),
		Closings:        c.GetStringSlice("composer.closings"),
		DefaultClosing:  c.GetString("composer.default_closing"),
		PositivePhrases: c.GetStringSlice("composer.positive_phrases"),
		RelevanceCheck:  c.GetBool("composer.relevance_check"),
	}
}

// GetHuggingFace returns the Hugging Face configuration
func (c *Config) GetHuggingFace() HuggingFaceConfig {
	timeout, err := c.GetDuration("huggingface.timeout")
	if err != nil {
		timeout = 60 * time.Second
	}

	return HuggingFaceConfig{
		APIToken:           c.GetString("huggingface.api_token"),
		BaseURL:            c.GetString("huggingface.base_url"),
		SummarizationModel: c.GetString("huggingface.summarization_model"),
		SentimentModel:     c.GetString("huggingface.sentiment_model"),
		GenerationModel:    c.GetString("huggingface.generation_model"),
		Timeout:            timeout,
		WaitForModel:       c.GetBool("huggingface.wait_for_model"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:    c.GetString("openai.api_key"),
		BaseURL:   c.GetString("openai.base_url"),
		ModelName: c.GetString("openai.model_name"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:    c.GetString("gemini.api_key"),
		ModelName: c.GetString("gemini.model_name"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:  c.GetString("bedrock.region"),
		ModelID: c.GetString("bedrock.model_id"),
	}
}

// GetLanguage returns the Cloud Natural Language configuration
func (c *Config) GetLanguage() LanguageConfig {
	return LanguageConfig{
		CredentialsFile: c.GetString("language.credentials_file"),
		NeutralBand:     c.GetFloat64("language.neutral_band"),
	}
}

// GetServer returns the front end configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		Frontend:      c.GetString("server.frontend"),
		ListenAddress: c.GetString("server.listen_address"),
		BypassDomains: c.GetStringSlice("server.bypass_domains"),
		Headers: HeaderNames{
			Sentiment:     c.GetString("server.headers.sentiment"),
			Score:         c.GetString("server.headers.score"),
			NeedsResponse: c.GetString("server.headers.needs_response"),
			ResponseType:  c.GetString("server.headers.response_type"),
			Summary:       c.GetString("server.headers.summary"),
		},
		Postfix: PostfixConfig{
			Address: c.GetString("server.postfix.address"),
			Port:    c.GetInt("server.postfix.port"),
			Enabled: c.GetBool("server.postfix.enabled"),
		},
	}
}
