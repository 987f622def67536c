package tool_test

import (
	"time"

	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/router"
	"github.com/habiliai/mcpchat/tool"
	"github.com/mark3labs/mcp-go/server"
)

func (s *TestSuite) TestManager_Handlers() {
	manager := tool.NewManager(s.Logger)
	defer manager.Close()

	manager.AddClient("math", s.newInProcessClient(newMathServer()), config.MCPServerConfig{})
	manager.AddClient("websearch", s.newInProcessClient(newSearchServer()), config.MCPServerConfig{})
	manager.ConnectAll(s, &config.ToolConfig{
		Servers: map[string]config.MCPServerConfig{
			"gmail": {Command: "/nonexistent/gmail-mcp-server"},
		},
	})

	handlers := manager.Handlers(s, []config.ToolBinding{
		{Category: "math", Server: "math"},
		{Category: "search", Server: "websearch", Tool: "search_web"},
		{Category: "mail", Server: "gmail"},
		{Category: "music", Server: "websearch", Tool: "play"},
		{Category: "weather", Server: "websearch"},
	})
	s.Len(handlers, 4)

	out, err := handlers[router.CategoryMath].Invoke(s, "2 + 2")
	s.Require().NoError(err)
	s.Equal("result of 2 + 2", out)

	out, err = handlers[router.CategorySearch].Invoke(s, "go 1.24")
	s.Require().NoError(err)
	s.Equal("results for go 1.24", out)

	s.IsType(&tool.Unavailable{}, handlers[router.CategoryMail])
	s.IsType(&tool.Unavailable{}, handlers[router.CategoryMusic])

	_, err = manager.Client("gmail")
	s.ErrorIs(err, errors.ErrToolUnavailable)
	_, err = manager.Client("spotify")
	s.ErrorIs(err, errors.ErrNotFound)
}

func (s *TestSuite) TestManager_ConnectSSE() {
	ts := server.NewTestServer(newMathServer())
	defer ts.Close()

	conf := config.MCPServerConfig{
		Transport: config.MCPTransportSSE,
		URL:       ts.URL + "/sse",
		Timeout:   5 * time.Second,
	}

	manager := tool.NewManager(s.Logger)
	defer manager.Close()
	s.Require().NoError(manager.Connect(s, "math", conf))

	handlers := manager.Handlers(s, []config.ToolBinding{{Category: "math", Server: "math"}})
	handler, ok := handlers[router.CategoryMath].(*tool.MCPHandler)
	s.Require().True(ok)
	s.Equal("math/calculate", handler.Name())
	s.Equal("expression", handler.Argument())

	// the session stays usable across turns
	for _, expression := range []string{"1+1", "6*7"} {
		out, err := handler.Invoke(s, expression)
		s.Require().NoError(err)
		s.Equal("result of "+expression, out)
	}

	report := manager.Check(s, &config.ToolConfig{
		Servers: map[string]config.MCPServerConfig{"math": conf},
	})
	s.Require().Len(report, 1)
	s.True(report[0].OK, report[0].Error)
	s.Equal("sse", report[0].Transport)
	s.Equal([]string{"calculate"}, report[0].Tools)
}

func (s *TestSuite) TestManager_ConnectStreamableHTTP() {
	ts := server.NewTestStreamableHTTPServer(newSearchServer())
	defer ts.Close()

	manager := tool.NewManager(s.Logger)
	defer manager.Close()
	manager.ConnectAll(s, &config.ToolConfig{
		Servers: map[string]config.MCPServerConfig{
			"websearch": {URL: ts.URL + "/mcp"},
		},
	})

	_, err := manager.Client("websearch")
	s.Require().NoError(err)

	handlers := manager.Handlers(s, []config.ToolBinding{
		{Category: "search", Server: "websearch", Tool: "search_web"},
		{Category: "mail", Server: "websearch", Tool: "broken"},
	})

	out, err := handlers[router.CategorySearch].Invoke(s, "latest go release")
	s.Require().NoError(err)
	s.Equal("results for latest go release", out)

	_, err = handlers[router.CategoryMail].Invoke(s, "inbox")
	s.ErrorIs(err, errors.ErrToolFailed)
	s.Contains(err.Error(), "quota exceeded")
}

func (s *TestSuite) TestManager_Check() {
	manager := tool.NewManager(s.Logger)
	defer manager.Close()

	report := manager.Check(s, &config.ToolConfig{
		Servers: map[string]config.MCPServerConfig{
			"broken": {Command: "/nonexistent/mcp-server"},
			"remote": {Transport: config.MCPTransportSSE},
		},
	})
	s.Require().Len(report, 2)

	s.Equal("broken", report[0].Server)
	s.Equal("stdio", report[0].Transport)
	s.False(report[0].OK)
	s.NotEmpty(report[0].Error)

	s.Equal("remote", report[1].Server)
	s.False(report[1].OK)
	s.Contains(report[1].Error, "URL is required")
}

func (s *TestSuite) TestMCPClientFactoryValidation() {
	factory := tool.NewMCPClientFactory()

	tests := []struct {
		name     string
		config   config.MCPServerConfig
		errorMsg string
	}{
		{
			name:     "stdio without command",
			config:   config.MCPServerConfig{Transport: config.MCPTransportStdio},
			errorMsg: "command is required for stdio transport",
		},
		{
			name:     "sse without URL",
			config:   config.MCPServerConfig{Transport: config.MCPTransportSSE},
			errorMsg: "URL is required for SSE transport",
		},
		{
			name:     "http without URL",
			config:   config.MCPServerConfig{Transport: config.MCPTransportHTTP},
			errorMsg: "URL is required for streamable transport",
		},
		{
			name:     "unknown transport",
			config:   config.MCPServerConfig{Transport: "websocket"},
			errorMsg: "unsupported transport type",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := factory.CreateClient(s, "test", tt.config)
			s.Require().Error(err)
			s.ErrorIs(err, errors.ErrInvalidConfig)
			s.Contains(err.Error(), tt.errorMsg)
		})
	}
}

func (s *TestSuite) TestMCPTransportDetection() {
	tests := []struct {
		name     string
		config   config.MCPServerConfig
		expected config.MCPTransportType
	}{
		{
			name:     "stdio with command",
			config:   config.MCPServerConfig{Command: "python"},
			expected: config.MCPTransportStdio,
		},
		{
			name:     "http with URL",
			config:   config.MCPServerConfig{URL: "http://localhost:8000/mcp"},
			expected: config.MCPTransportHTTP,
		},
		{
			name:     "explicit sse",
			config:   config.MCPServerConfig{URL: "http://localhost:8000/sse", Transport: config.MCPTransportSSE},
			expected: config.MCPTransportSSE,
		},
		{
			name:     "empty config defaults to stdio",
			config:   config.MCPServerConfig{},
			expected: config.MCPTransportStdio,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.expected, tt.config.GetTransport())
		})
	}
}
