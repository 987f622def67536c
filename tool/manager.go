package tool

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/router"
	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mokiat/gog"
)

const (
	clientName    = "mcpchat"
	clientVersion = "0.1.0"
)

type (
	// Manager owns the MCP clients of all configured servers.
	Manager struct {
		logger  *slog.Logger
		factory *MCPClientFactory

		mtx     sync.Mutex
		clients map[string]mcpclient.MCPClient
		servers map[string]config.MCPServerConfig
		failed  map[string]error
	}

	// ServerStatus is the result of probing one MCP server.
	ServerStatus struct {
		Server    string   `json:"server"`
		Transport string   `json:"transport"`
		OK        bool     `json:"ok"`
		Tools     []string `json:"tools,omitempty"`
		Error     string   `json:"error,omitempty"`
	}
)

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:  logger,
		factory: NewMCPClientFactory(),
		clients: make(map[string]mcpclient.MCPClient),
		servers: make(map[string]config.MCPServerConfig),
		failed:  make(map[string]error),
	}
}

// ConnectAll connects every configured server. A server that fails is logged
// and remembered; it does not stop the others.
func (m *Manager) ConnectAll(ctx context.Context, conf *config.ToolConfig) {
	for _, name := range sortedServerNames(conf) {
		if err := m.Connect(ctx, name, conf.Servers[name]); err != nil {
			m.logger.Warn("failed to connect MCP server", "server", name, "err", err)
		}
	}
}

// Connect starts and initialises the client of one server.
func (m *Manager) Connect(ctx context.Context, name string, conf config.MCPServerConfig) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if _, ok := m.clients[name]; ok {
		return nil
	}
	m.servers[name] = conf

	c, err := m.startClient(ctx, name, conf)
	if err != nil {
		m.failed[name] = err
		return err
	}

	delete(m.failed, name)
	m.clients[name] = c
	m.logger.Info("connected MCP server", "server", name, "transport", conf.GetTransport())
	return nil
}

// AddClient registers a client that is already initialised.
func (m *Manager) AddClient(name string, c mcpclient.MCPClient, conf config.MCPServerConfig) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.clients[name] = c
	m.servers[name] = conf
	delete(m.failed, name)
}

func (m *Manager) startClient(ctx context.Context, name string, conf config.MCPServerConfig) (*mcpclient.Client, error) {
	c, err := m.factory.CreateClient(ctx, name, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create MCP client %s", name)
	}

	if conf.GetTransport() == config.MCPTransportStdio {
		if stderr, ok := mcpclient.GetStderr(c); ok {
			go m.forwardStderr(name, stderr)
		}
	} else if err := c.Start(ctx); err != nil {
		// the SSE stream lives on ctx, so no timeout here
		_ = c.Close()
		return nil, errors.Wrapf(err, "failed to start MCP client %s", name)
	}

	initCtx, cancel := withTimeout(ctx, conf)
	defer cancel()

	initRequest := mcpgo.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcpgo.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}
	if _, err := c.Initialize(initCtx, initRequest); err != nil {
		_ = c.Close()
		return nil, errors.Wrapf(err, "failed to initialize MCP client %s", name)
	}

	return c, nil
}

func (m *Manager) forwardStderr(name string, stderr io.Reader) {
	rd := bufio.NewReader(stderr)
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			if err == io.EOF || strings.Contains(err.Error(), "already closed") {
				return
			}
			m.logger.Error("failed to copy stderr", "err", err, "server", name)
			return
		}
		m.logger.Debug("[MCP] "+strings.TrimSpace(line), "server", name)
	}
}

// Client returns the connected client of a server.
func (m *Manager) Client(name string) (mcpclient.MCPClient, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if c, ok := m.clients[name]; ok {
		return c, nil
	}
	if err, ok := m.failed[name]; ok {
		return nil, errors.Wrapf(errors.ErrToolUnavailable, "server %s failed to start: %v", name, err)
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "server %s is not configured", name)
}

// Handlers builds the handler of every binding. Bindings whose server is down
// or whose tool cannot be resolved get an Unavailable handler.
func (m *Manager) Handlers(ctx context.Context, bindings []config.ToolBinding) map[router.Category]Handler {
	handlers := make(map[router.Category]Handler, len(bindings))
	for _, binding := range bindings {
		category, ok := router.ParseCategory(binding.Category)
		if !ok || category == router.CategoryDirect {
			m.logger.Warn("skipping tool binding", "category", binding.Category)
			continue
		}

		handler, err := m.handler(ctx, binding)
		if err != nil {
			m.logger.Warn("tool unavailable", "category", category, "server", binding.Server, "err", err)
			handlers[category] = NewUnavailable(category, binding.Server+" is not available")
			continue
		}

		m.logger.Debug("bound tool", "category", category, "tool", handler.Name(), "argument", handler.Argument())
		handlers[category] = handler
	}
	return handlers
}

func (m *Manager) handler(ctx context.Context, binding config.ToolBinding) (*MCPHandler, error) {
	c, err := m.Client(binding.Server)
	if err != nil {
		return nil, err
	}

	m.mtx.Lock()
	conf := m.servers[binding.Server]
	m.mtx.Unlock()

	return NewMCPHandler(ctx, binding.Server, c, binding, conf.Timeout)
}

// Check connects to every configured server independently of the running
// clients and lists its tools.
func (m *Manager) Check(ctx context.Context, conf *config.ToolConfig) []ServerStatus {
	return gog.Map(sortedServerNames(conf), func(name string) ServerStatus {
		server := conf.Servers[name]
		status := ServerStatus{
			Server:    name,
			Transport: string(server.GetTransport()),
		}

		c, err := m.startClient(ctx, name, server)
		if err != nil {
			status.Error = err.Error()
			return status
		}
		defer c.Close()

		listToolsResult, err := c.ListTools(ctx, mcpgo.ListToolsRequest{})
		if err != nil {
			status.Error = errors.Wrapf(err, "failed to list tools").Error()
			return status
		}

		status.OK = true
		status.Tools = gog.Map(listToolsResult.Tools, func(t mcpgo.Tool) string {
			return t.Name
		})
		return status
	})
}

func (m *Manager) Close() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for name, c := range m.clients {
		if err := c.Close(); err != nil {
			m.logger.Warn("failed to close MCP client", "server", name, "err", err)
		}
	}
	m.clients = make(map[string]mcpclient.MCPClient)
}

func sortedServerNames(conf *config.ToolConfig) []string {
	names := make([]string, 0, len(conf.Servers))
	for name := range conf.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func withTimeout(ctx context.Context, conf config.MCPServerConfig) (context.Context, context.CancelFunc) {
	if conf.Timeout > 0 {
		return context.WithTimeout(ctx, conf.Timeout)
	}
	return context.WithCancel(ctx)
}
