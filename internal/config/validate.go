package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the sections the pipeline depends on
func (c *Config) Validate() error {
	sections := []struct {
		name  string
		value any
	}{
		{"pipeline", c.GetPipeline()},
		{"huggingface", c.GetHuggingFace()},
		{"openai", c.GetOpenAI()},
		{"gemini", c.GetGemini()},
		{"bedrock", c.GetBedrock()},
		{"language", c.GetLanguage()},
		{"server", c.GetServer()},
	}

	for _, s := range sections {
		if err := validate.Struct(s.value); err != nil {
			return fmt.Errorf("invalid %s configuration: %w", s.name, err)
		}
	}

	policy := c.GetPolicy()
	if policy.BriefThreshold < 0 || policy.BriefThreshold > 1 {
		return fmt.Errorf("invalid policy configuration: brief_threshold %.2f outside [0,1]", policy.BriefThreshold)
	}

	rules := c.GetFormatRules()
	if len(rules.Greetings) == 0 || len(rules.Closings) == 0 {
		return errors.New("invalid composer configuration: greetings and closings must not be empty")
	}

	return nil
}
