// Package llm holds model configuration for the two specialist roles. Both
// roles share one OpenRouter account; each may pin its own model and
// temperature.
package llm

import (
	"errors"
	"strings"
	"time"

	"supportmesh/agent/contract"
	"supportmesh/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	// Per-role overrides; empty means inherit the shared Model/Temperature.
	DataModel          string  `envconfig:"DATA_MODEL" split_words:"true"`
	SupportModel       string  `envconfig:"SUPPORT_MODEL" split_words:"true"`
	DataTemperature    float64 `envconfig:"DATA_TEMPERATURE" split_words:"true" default:"-1"`
	SupportTemperature float64 `envconfig:"SUPPORT_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("llm: api key is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("llm: model is required")
	}
	return nil
}

// OpenRouterFor resolves the effective client config for a specialist role.
func (c Config) OpenRouterFor(agent contract.AgentType) openrouter.Config {
	model := c.Model
	temperature := c.Temperature

	switch agent {
	case contract.AgentTypeData:
		if c.DataModel != "" {
			model = c.DataModel
		}
		if c.DataTemperature >= 0 {
			temperature = c.DataTemperature
		}
	case contract.AgentTypeSupport:
		if c.SupportModel != "" {
			model = c.SupportModel
		}
		if c.SupportTemperature >= 0 {
			temperature = c.SupportTemperature
		}
	}

	return openrouter.Config{
		BaseURL:            c.BaseURL,
		APIKey:             c.APIKey,
		Model:              model,
		MaxCompletionToken: c.MaxCompletionToken,
		Temperature:        temperature,
		Timeout:            c.Timeout,
		SiteURL:            c.SiteURL,
		SiteName:           c.SiteName,
	}
}
