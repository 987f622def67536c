package config

import (
	"os"
	"strconv"

	"github.com/habiliai/mcpchat/errors"
	"github.com/joho/godotenv"
)

var apiKeyEnvs = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderXAI:       "XAI_API_KEY",
	ProviderGroq:      "GROQ_API_KEY",
}

// ApplyEnv loads the dotenv files that exist (without overriding the process
// environment) and copies credentials and overrides from the environment.
func (c *Config) ApplyEnv(dotenvFiles ...string) error {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, filename := range dotenvFiles {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(filename); err != nil {
			return errors.Wrapf(err, "failed to load %s", filename)
		}
	}

	c.Model.OpenAIAPIKey = os.Getenv(apiKeyEnvs[ProviderOpenAI])
	c.Model.AnthropicAPIKey = os.Getenv(apiKeyEnvs[ProviderAnthropic])
	c.Model.XAIAPIKey = os.Getenv(apiKeyEnvs[ProviderXAI])
	c.Model.GroqAPIKey = os.Getenv(apiKeyEnvs[ProviderGroq])

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.LogLevel = v
	}
	if v := os.Getenv("LOG_HANDLER"); v != "" {
		c.Log.LogHandler = v
	}
	if v := os.Getenv("MCPCHAT_MODEL"); v != "" {
		c.Model.Model = v
	}
	if v := os.Getenv("MCPCHAT_MEMORY_PATH"); v != "" {
		c.Memory.Path = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidConfig, "invalid PORT %q", v)
		}
		c.Server.Port = port
	}

	return nil
}
