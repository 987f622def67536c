package tool

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

const (
	dialTimeout           = 10 * time.Second
	responseHeaderTimeout = 30 * time.Second
)

// MCPClientFactory creates MCP clients based on the server configuration
type MCPClientFactory struct {
	// sseClient has no Client.Timeout: it would cut the event stream, which
	// stays open for the whole session. Tool calls are bounded per call.
	sseClient *http.Client
}

func NewMCPClientFactory() *MCPClientFactory {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext
	t.ResponseHeaderTimeout = responseHeaderTimeout

	return &MCPClientFactory{
		sseClient: &http.Client{Transport: t},
	}
}

// CreateClient creates an MCP client. Stdio clients are already running when
// this returns; the others still need Start.
func (f *MCPClientFactory) CreateClient(_ context.Context, serverName string, conf config.MCPServerConfig) (*mcpclient.Client, error) {
	transportType := conf.GetTransport()

	switch transportType {
	case config.MCPTransportStdio:
		return f.createStdioClient(conf)
	case config.MCPTransportSSE:
		return f.createSSEClient(conf)
	case config.MCPTransportHTTP:
		return f.createStreamableClient(conf)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unsupported transport type %q for server %s", transportType, serverName)
	}
}

func (f *MCPClientFactory) createStdioClient(conf config.MCPServerConfig) (*mcpclient.Client, error) {
	if conf.Command == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "command is required for stdio transport")
	}

	env := conf.ExpandedEnv()
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	envs := make([]string, 0, len(keys))
	for _, key := range keys {
		envs = append(envs, fmt.Sprintf("%s=%s", key, env[key]))
	}

	return mcpclient.NewStdioMCPClient(conf.Command, envs, conf.Args...)
}

func (f *MCPClientFactory) createSSEClient(conf config.MCPServerConfig) (*mcpclient.Client, error) {
	if conf.URL == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "URL is required for SSE transport")
	}

	opts := []transport.ClientOption{
		transport.WithHTTPClient(f.sseClient),
	}
	if len(conf.Headers) > 0 {
		opts = append(opts, transport.WithHeaders(conf.Headers))
	}

	return mcpclient.NewSSEMCPClient(conf.URL, opts...)
}

func (f *MCPClientFactory) createStreamableClient(conf config.MCPServerConfig) (*mcpclient.Client, error) {
	if conf.URL == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "URL is required for streamable transport")
	}

	return mcpclient.NewStreamableHttpClient(conf.URL, transport.WithHTTPHeaders(conf.Headers))
}
