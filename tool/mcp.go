package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/internal/stringutils"
	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"
)

const defaultArgument = "query"

// MCPHandler forwards the full user text to one tool of an MCP server.
type MCPHandler struct {
	server   string
	tool     string
	argument string
	timeout  time.Duration
	client   mcpclient.MCPClient
}

var (
	_ Handler = (*MCPHandler)(nil)
)

// NewMCPHandler resolves the tool and argument of binding against the tools
// the server lists.
func NewMCPHandler(ctx context.Context, serverName string, client mcpclient.MCPClient, binding config.ToolBinding, timeout time.Duration) (*MCPHandler, error) {
	listToolsResult, err := client.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list tools of %s", serverName)
	}
	if len(listToolsResult.Tools) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "server %s has no tools", serverName)
	}

	tool := listToolsResult.Tools[0]
	if binding.Tool != "" {
		var ok bool
		tool, ok = lo.Find(listToolsResult.Tools, func(t mcpgo.Tool) bool {
			return t.Name == binding.Tool
		})
		if !ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "tool %s not found on server %s", binding.Tool, serverName)
		}
	}

	argument := binding.Argument
	if argument == "" {
		argument = textArgument(tool.InputSchema)
	}

	return &MCPHandler{
		server:   serverName,
		tool:     tool.Name,
		argument: argument,
		timeout:  timeout,
		client:   client,
	}, nil
}

// textArgument picks the first required string property of the schema.
func textArgument(schema mcpgo.ToolInputSchema) string {
	for _, name := range schema.Required {
		prop, ok := schema.Properties[name].(map[string]any)
		if !ok {
			continue
		}
		if typ, _ := prop["type"].(string); typ == "string" {
			return name
		}
	}
	return defaultArgument
}

func (h *MCPHandler) Name() string {
	return h.server + "/" + h.tool
}

func (h *MCPHandler) Argument() string {
	return h.argument
}

func (h *MCPHandler) Invoke(ctx context.Context, text string) (string, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	req := mcpgo.CallToolRequest{}
	req.Params.Name = h.tool
	req.Params.Arguments = map[string]any{
		h.argument: text,
	}

	res, err := h.client.CallTool(ctx, req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to call tool %s", h.Name())
	}

	output := contentText(res.Content)
	if res.IsError {
		return "", errors.Wrapf(errors.ErrToolFailed, "%s: %s", h.Name(), output)
	}

	return output, nil
}

func contentText(contents []mcpgo.Content) string {
	parts := make([]string, 0, len(contents))
	for _, content := range contents {
		switch c := content.(type) {
		case mcpgo.TextContent:
			parts = append(parts, c.Text)
		case *mcpgo.TextContent:
			parts = append(parts, c.Text)
		case mcpgo.ImageContent:
			parts = append(parts, fmt.Sprintf("[image %s]", c.MIMEType))
		case mcpgo.EmbeddedResource:
			parts = append(parts, "[resource]")
		}
	}
	return stringutils.Clean(strings.Join(parts, "\n"))
}
