package llm

import (
	"context"
	"strings"

	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
)

type (
	Request struct {
		System string
		Prompt string
	}

	// Client is a hosted language model. Generate returns the reply text.
	Client interface {
		Generate(ctx context.Context, req Request) (string, error)
	}
)

const (
	xaiBaseURL  = "https://api.x.ai/v1"
	groqBaseURL = "https://api.groq.com/openai/v1"
)

// NewClient creates the client of the provider named in conf.Model.
func NewClient(conf *config.ModelConfig) (Client, error) {
	provider, model := conf.SplitModel()
	if strings.TrimSpace(model) == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "model name is empty in %q", conf.Model)
	}

	apiKey := conf.APIKey(provider)
	switch provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(apiKey, conf.BaseURL, model, conf)
	case config.ProviderXAI:
		return NewOpenAIClient(apiKey, firstNonEmpty(conf.BaseURL, xaiBaseURL), model, conf)
	case config.ProviderGroq:
		return NewOpenAIClient(apiKey, firstNonEmpty(conf.BaseURL, groqBaseURL), model, conf)
	case config.ProviderAnthropic:
		return NewAnthropicClient(apiKey, conf.BaseURL, model, conf)
	}

	return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown model provider %q", provider)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
