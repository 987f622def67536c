package config

import (
	"os"
	"time"
)

// MCPTransportType represents the transport type for MCP servers
type MCPTransportType string

const (
	MCPTransportStdio MCPTransportType = "stdio"
	MCPTransportSSE   MCPTransportType = "sse"
	MCPTransportHTTP  MCPTransportType = "http"
)

type (
	// MCPServerConfig represents the configuration for an MCP server
	MCPServerConfig struct {
		// Transport type (stdio, sse, http)
		Transport MCPTransportType `yaml:"transport,omitempty" json:"transport,omitempty" jsonschema:"enum=stdio,enum=sse,enum=http"`

		// For stdio transport
		Command string            `yaml:"command,omitempty" json:"command,omitempty"`
		Args    []string          `yaml:"args,omitempty" json:"args,omitempty"`
		Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`

		// For SSE/HTTP transports
		URL     string            `yaml:"url,omitempty" json:"url,omitempty"`
		Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

		Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	}

	// ToolBinding binds a routing category to one tool of an MCP server.
	ToolBinding struct {
		Category string `yaml:"category" json:"category" jsonschema:"enum=search,enum=mail,enum=music,enum=math"`
		Server   string `yaml:"server" json:"server"`
		// Tool is the MCP tool name. Empty means the first tool the server lists.
		Tool string `yaml:"tool,omitempty" json:"tool,omitempty"`
		// Argument receives the raw user text. Empty means the first required string parameter.
		Argument string `yaml:"argument,omitempty" json:"argument,omitempty"`
	}

	ToolConfig struct {
		Servers  map[string]MCPServerConfig `yaml:"servers,omitempty" json:"servers,omitempty"`
		Bindings []ToolBinding              `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	}
)

func NewToolConfig() *ToolConfig {
	return &ToolConfig{
		Servers: map[string]MCPServerConfig{},
	}
}

// GetTransport returns the transport type, defaulting to stdio if not specified
func (c *MCPServerConfig) GetTransport() MCPTransportType {
	if c.Transport == "" {
		// Auto-detect based on config
		if c.URL != "" {
			return MCPTransportHTTP
		}
		return MCPTransportStdio
	}
	return c.Transport
}

// ExpandedEnv returns Env with ${NAME} references resolved from the process environment.
func (c *MCPServerConfig) ExpandedEnv() map[string]string {
	env := make(map[string]string, len(c.Env))
	for k, v := range c.Env {
		env[k] = os.ExpandEnv(v)
	}
	return env
}
