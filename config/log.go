package config

type LogConfig struct {
	LogLevel   string `yaml:"level,omitempty" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	LogHandler string `yaml:"handler,omitempty" json:"handler,omitempty" jsonschema:"enum=default,enum=text,enum=json"`
}

func NewLogConfig() *LogConfig {
	return &LogConfig{
		LogLevel:   "info",
		LogHandler: "default",
	}
}
