package browser

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"fmt"
	"strings"

	"browsermcp/pkg/api"
	"browsermcp/pkg/tools"
	"browsermcp/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultImageMime = "image/png"

func (s *Toolset) consoleLogs() *browserTool {
	return &browserTool{
		name:        "browser_get_console_logs",
		description: "Get the console logs from the browser",
		params:      map[string]any{},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			raw, err := s.ctrl.Execute(ctx, api.ActionRequest{Action: "browser_get_console_logs", Params: map[string]any{}})
			if err != nil {
				return nil, err
			}
			text, err := formatConsoleLogs(raw)
			if err != nil {
				return nil, err
			}
			return api.NewTextResult(text), nil
		},
	}
}

// formatConsoleLogs renders each log entry as one line of compact JSON,
// keeping the entry's own key order.
func formatConsoleLogs(raw jsoniter.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var entries []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return "", fmt.Errorf("unexpected console log payload: %w", err)
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		var buf bytes.Buffer
		if err := stdjson.Compact(&buf, e); err != nil {
			return "", fmt.Errorf("unexpected console log entry: %w", err)
		}
		lines = append(lines, buf.String())
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Toolset) screenshot() *browserTool {
	return &browserTool{
		name:        "browser_screenshot",
		description: "Take a screenshot of the current page",
		params:      map[string]any{},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			raw, err := s.ctrl.Execute(ctx, api.ActionRequest{Action: "browser_screenshot", Params: map[string]any{}})
			if err != nil {
				return nil, err
			}
			var data string
			if err := json.Unmarshal(raw, &data); err != nil {
				return nil, fmt.Errorf("unexpected screenshot payload: %w", err)
			}
			block := imageBlock(data)
			return &api.ToolResult{Content: []api.ContentBlock{block}, Details: map[string]any{"action": "browser_screenshot"}}, nil
		},
	}
}

// imageBlock turns the extension's base64 image, optionally wrapped in a
// data URL, into an image content block with a sniffed MIME type.
func imageBlock(data string) api.ContentBlock {
	mime, data := tools.SplitDataURL(data)
	if mime == "" {
		mime = defaultImageMime
		if decoded, err := tools.Base64Decode(data); err == nil {
			mime = utils.DetectImageMime(decoded, defaultImageMime)
		}
	}
	return api.ContentBlock{Type: api.BlockTypeImage, Data: data, MimeType: mime}
}
