package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"browsermcp/pkg/api"
	"browsermcp/pkg/tools"

	jsoniter "github.com/json-iterator/go"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewMCPServer exposes every tool in registry on a new MCP server. Tool
// failures are reported as error results; they never end the session.
func NewMCPServer(registry api.ToolRegistry, name, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)
	for _, tool := range registry.GetAll() {
		register(srv, tool)
	}
	return srv
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func register(srv *mcp.Server, tool api.Tool) {
	def := &mcp.Tool{
		Name:        tool.Name(),
		Description: tool.Description(),
		InputSchema: inputSchema(tool.Parameters(), tool.RequiredParameters()),
	}

	srv.AddTool(def, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodeArguments(req.Params.Arguments)
		if err != nil {
			return errorResult(fmt.Errorf("%w: %v", tools.ErrInvalidArguments, err)), nil
		}

		start := time.Now()
		result, err := tool.Execute(ctx, args)
		if err != nil {
			slog.WarnContext(ctx, "Tool call failed", "tool", tool.Name(), "error", err, "elapsed", time.Since(start))
			return errorResult(err), nil
		}
		slog.DebugContext(ctx, "Tool call finished", "tool", tool.Name(), "elapsed", time.Since(start))

		converted, err := toCallToolResult(result)
		if err != nil {
			return errorResult(err), nil
		}
		return converted, nil
	})
}

func decodeArguments(raw []byte) (map[string]any, error) {
	args := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}

func errorResult(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}

// toCallToolResult converts tool content blocks into MCP content.
func toCallToolResult(result *api.ToolResult) (*mcp.CallToolResult, error) {
	out := &mcp.CallToolResult{Content: []mcp.Content{}}
	if result == nil {
		return out, nil
	}
	for _, block := range result.Content {
		switch block.Type {
		case api.BlockTypeImage:
			data, err := tools.Base64Decode(block.Data)
			if err != nil {
				return nil, fmt.Errorf("invalid image data: %w", err)
			}
			out.Content = append(out.Content, &mcp.ImageContent{Data: data, MIMEType: block.MimeType})
		default:
			out.Content = append(out.Content, &mcp.TextContent{Text: block.Text})
		}
	}
	return out, nil
}
