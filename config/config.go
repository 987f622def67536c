package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/router"
)

type Config struct {
	Log    LogConfig    `yaml:"log,omitempty" json:"log,omitempty"`
	Model  ModelConfig  `yaml:"model,omitempty" json:"model,omitempty"`
	Memory MemoryConfig `yaml:"memory,omitempty" json:"memory,omitempty"`
	Router RouterConfig `yaml:"router,omitempty" json:"router,omitempty"`
	Tool   ToolConfig   `yaml:"tools,omitempty" json:"tools,omitempty"`
	Server ServerConfig `yaml:"server,omitempty" json:"server,omitempty"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Log:    *NewLogConfig(),
		Model:  *NewModelConfig(),
		Memory: *NewMemoryConfig(),
		Router: *NewRouterConfig(),
		Tool:   *NewToolConfig(),
		Server: *NewServerConfig(),
	}
}

// LoadConfigFromFile overlays the YAML file on top of the defaults.
func LoadConfigFromFile(file string) (conf *Config, err error) {
	conf = NewConfig()

	var yamlBytes []byte
	if yamlBytes, err = os.ReadFile(file); err != nil {
		err = errors.Wrapf(err, "failed to read file %s", file)
		return
	}

	if err = yaml.Unmarshal(yamlBytes, conf); err != nil {
		err = errors.Wrapf(err, "failed to unmarshal file %s", file)
		return
	}

	return
}

// Validate reports configuration errors that must abort startup.
func (c *Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if err := c.Memory.Validate(); err != nil {
		return err
	}
	if c.Memory.Embedder == EmbedderOpenAI && c.Model.OpenAIAPIKey == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "%s not found in environment", apiKeyEnvs[ProviderOpenAI])
	}
	return c.Tool.Validate()
}

func (c *ModelConfig) Validate() error {
	provider, model := c.SplitModel()
	switch provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderXAI, ProviderGroq:
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown model provider %q", provider)
	}
	if model == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "model name is required")
	}
	if c.APIKey(provider) == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "%s not found in environment", apiKeyEnvs[provider])
	}
	return nil
}

func (c *MemoryConfig) Validate() error {
	switch c.Backend {
	case MemoryBackendFile, MemoryBackendSqlite:
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown memory backend %q", c.Backend)
	}
	if c.Path == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "memory path is required")
	}
	switch c.Embedder {
	case EmbedderHash:
		if c.Dimension <= 0 {
			return errors.Wrapf(errors.ErrInvalidConfig, "memory dimension must be positive")
		}
	case EmbedderOpenAI:
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown embedder %q", c.Embedder)
	}
	if c.TopK <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "memory topK must be positive")
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return errors.Wrapf(errors.ErrInvalidConfig, "memory minScore must be within [0, 1]")
	}
	return nil
}

func (c *ToolConfig) Validate() error {
	seen := map[router.Category]struct{}{}
	for _, binding := range c.Bindings {
		category, ok := router.ParseCategory(binding.Category)
		if !ok || category == router.CategoryDirect {
			return errors.Wrapf(errors.ErrInvalidConfig, "invalid binding category %q", binding.Category)
		}
		if _, dup := seen[category]; dup {
			return errors.Wrapf(errors.ErrInvalidConfig, "category %q is bound twice", binding.Category)
		}
		seen[category] = struct{}{}
		if _, ok := c.Servers[binding.Server]; !ok {
			return errors.Wrapf(errors.ErrInvalidConfig, "binding %q refers to unknown server %q", binding.Category, binding.Server)
		}
	}
	return nil
}

// ExampleConfig is the configuration written by `mcpchat config init`.
func ExampleConfig() *Config {
	c := NewConfig()
	c.Tool.Servers = map[string]MCPServerConfig{
		"math": {
			Transport: MCPTransportStdio,
			Command:   "python",
			Args:      []string{"mathserver.py"},
		},
		"websearch": {
			Transport: MCPTransportStdio,
			Command:   "python",
			Args:      []string{"websearch.py"},
			Env:       map[string]string{"TAVILY_API_KEY": "${TAVILY_API_KEY}"},
		},
		"gmail": {
			Transport: MCPTransportStdio,
			Command:   "python",
			Args:      []string{"gmail.py"},
		},
		"music": {
			Transport: MCPTransportStdio,
			Command:   "python",
			Args:      []string{"music_player.py"},
		},
		"weather": {
			Transport: MCPTransportHTTP,
			URL:       "http://localhost:8000/mcp",
		},
	}
	c.Tool.Bindings = []ToolBinding{
		{Category: string(router.CategorySearch), Server: "websearch", Tool: "search_web", Argument: "query"},
		{Category: string(router.CategoryMail), Server: "gmail", Tool: "search_emails", Argument: "query"},
		{Category: string(router.CategoryMusic), Server: "music", Tool: "search_tracks", Argument: "query"},
		{Category: string(router.CategoryMath), Server: "math"},
	}
	return c
}
