package config

import (
	"strings"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderXAI       = "xai"
	ProviderGroq      = "groq"

	DefaultSystemPrompt = "You are a helpful assistant in a terminal chat. " +
		"Answer the user's message directly and compactly. " +
		"Use the context from past conversation only when it is relevant."
)

type ModelConfig struct {
	// Model is "<provider>/<model>". A bare model name means OpenAI.
	Model       string  `yaml:"model,omitempty" json:"model,omitempty" jsonschema:"description=Language model as provider/model (openai anthropic xai groq)"`
	System      string  `yaml:"system,omitempty" json:"system,omitempty"`
	MaxTokens   int     `yaml:"maxTokens,omitempty" json:"maxTokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	// BaseURL overrides the provider endpoint, e.g. for a self-hosted OpenAI-compatible server.
	BaseURL string `yaml:"baseURL,omitempty" json:"baseURL,omitempty"`

	OpenAIAPIKey    string `yaml:"-" json:"-"`
	AnthropicAPIKey string `yaml:"-" json:"-"`
	XAIAPIKey       string `yaml:"-" json:"-"`
	GroqAPIKey      string `yaml:"-" json:"-"`
}

func NewModelConfig() *ModelConfig {
	return &ModelConfig{
		Model:     "openai/gpt-4o-mini",
		System:    DefaultSystemPrompt,
		MaxTokens: 1024,
	}
}

// SplitModel returns the provider and the provider-local model name.
func (c *ModelConfig) SplitModel() (provider string, model string) {
	pieces := strings.SplitN(c.Model, "/", 2)
	if len(pieces) == 1 {
		return ProviderOpenAI, pieces[0]
	}
	return strings.ToLower(pieces[0]), pieces[1]
}

// APIKey returns the credential of the given provider.
func (c *ModelConfig) APIKey(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderXAI:
		return c.XAIAPIKey
	case ProviderGroq:
		return c.GroqAPIKey
	}
	return ""
}
