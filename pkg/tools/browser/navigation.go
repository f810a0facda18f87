package browser

import (
	"context"

	"browsermcp/pkg/api"
	"browsermcp/pkg/tools"
)

func (s *Toolset) navigate() *browserTool {
	return &browserTool{
		name:        "browser_navigate",
		description: "Navigate to a URL",
		params:      map[string]any{"url": str("The URL to navigate to")},
		required:    []string{"url"},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			url, err := tools.StringArg(args, "url")
			if err != nil {
				return nil, err
			}
			return s.relayThenSnapshot(ctx, "browser_navigate", map[string]any{"url": url})
		},
	}
}

func (s *Toolset) goBack() *browserTool {
	return &browserTool{
		name:        "browser_go_back",
		description: "Go back to the previous page",
		params:      map[string]any{},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			return s.relayThenSnapshot(ctx, "browser_go_back", map[string]any{})
		},
	}
}

func (s *Toolset) goForward() *browserTool {
	return &browserTool{
		name:        "browser_go_forward",
		description: "Go forward to the next page",
		params:      map[string]any{},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			return s.relayThenSnapshot(ctx, "browser_go_forward", map[string]any{})
		},
	}
}

func (s *Toolset) snapshot() *browserTool {
	return &browserTool{
		name:        "browser_snapshot",
		description: "Capture accessibility snapshot of the current page. Use this for getting references to elements to interact with.",
		params:      map[string]any{},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			return s.snap.Capture(ctx, "")
		},
	}
}
