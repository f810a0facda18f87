package browser

import (
	"context"
	"strconv"

	"browsermcp/pkg/api"
	"browsermcp/pkg/tools"
)

func (s *Toolset) pressKey() *browserTool {
	return &browserTool{
		name:        "browser_press_key",
		description: "Press a key on the keyboard",
		params: map[string]any{
			"key": str("Name of the key to press or a character to generate, such as `ArrowLeft` or `a`"),
		},
		required: []string{"key"},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			key, err := tools.StringArg(args, "key")
			if err != nil {
				return nil, err
			}
			if err := s.relay(ctx, "browser_press_key", map[string]any{"key": key}); err != nil {
				return nil, err
			}
			return api.NewTextResult("Pressed key " + key), nil
		},
	}
}

func (s *Toolset) wait() *browserTool {
	return &browserTool{
		name:        "browser_wait",
		description: "Wait for a specified time in seconds",
		params: map[string]any{
			"time": map[string]any{"type": "number", "description": "The time to wait in seconds"},
		},
		required: []string{"time"},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			seconds, err := tools.NumberArg(args, "time")
			if err != nil {
				return nil, err
			}
			if err := s.relay(ctx, "browser_wait", map[string]any{"time": seconds}); err != nil {
				return nil, err
			}
			return api.NewTextResult("Waited for " + strconv.FormatFloat(seconds, 'f', -1, 64) + " seconds"), nil
		},
	}
}
