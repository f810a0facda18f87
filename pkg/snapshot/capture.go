package snapshot

import (
	"context"
	"log/slog"
	"sync/atomic"

	"browsermcp/pkg/api"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Capturer fetches the current page snapshot through the relay and turns it
// into a tiered tool result. Options may be swapped at runtime.
type Capturer struct {
	ctrl api.Controller
	opts atomic.Pointer[Options]
}

func NewCapturer(ctrl api.Controller, opts Options) *Capturer {
	c := &Capturer{ctrl: ctrl}
	c.SetOptions(opts)
	return c
}

// SetOptions replaces the compression options for subsequent captures.
func (c *Capturer) SetOptions(opts Options) {
	c.opts.Store(&opts)
}

// Options returns the options currently in effect.
func (c *Capturer) Options() Options {
	return *c.opts.Load()
}

// Capture asks the extension for the page URL, title and accessibility
// snapshot, in that order, and renders them. status is shown on the first
// line and doubles as the action context for mode selection.
func (c *Capturer) Capture(ctx context.Context, status string) (*api.ToolResult, error) {
	urlRaw, err := c.ctrl.Execute(ctx, api.ActionRequest{Action: "getUrl"})
	if err != nil {
		return nil, err
	}
	titleRaw, err := c.ctrl.Execute(ctx, api.ActionRequest{Action: "getTitle"})
	if err != nil {
		return nil, err
	}
	snapRaw, err := c.ctrl.Execute(ctx, api.ActionRequest{Action: "browser_snapshot", Params: map[string]any{}})
	if err != nil {
		return nil, err
	}

	url, _ := decodeText(urlRaw)
	title, _ := decodeText(titleRaw)
	text, isText := decodeText(snapRaw)
	page := Page{URL: url, Title: title, Snapshot: text, Structured: !isText}

	cfg := SelectConfig(url, status)
	opts := c.Options()
	slog.DebugContext(ctx, "Snapshot captured", "mode", cfg.Mode, "chars", charLen(text), "structured", page.Structured)

	return api.NewTextResult(TieredResponse(page, status, cfg, opts)), nil
}

// decodeText returns a JSON string reply as plain text. Other values come
// back as their JSON text with ok=false; null and absent become "".
func decodeText(raw jsoniter.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), false
}
