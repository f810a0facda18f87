package browser

import (
	"context"

	"browsermcp/pkg/api"
	"browsermcp/pkg/snapshot"
)

// browserTool is one protocol tool backed by the relay. Its run func does
// the argument checks and the relay calls.
type browserTool struct {
	name        string
	description string
	params      map[string]any
	required    []string
	run         func(ctx context.Context, args map[string]any) (*api.ToolResult, error)
}

func (t *browserTool) Name() string                 { return t.name }
func (t *browserTool) Description() string          { return t.description }
func (t *browserTool) Parameters() map[string]any   { return t.params }
func (t *browserTool) RequiredParameters() []string { return t.required }

func (t *browserTool) Execute(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
	if args == nil {
		args = map[string]any{}
	}
	return t.run(ctx, args)
}

// Toolset builds the browser tools over a relay controller and a snapshot
// capturer.
type Toolset struct {
	ctrl api.Controller
	snap *snapshot.Capturer
}

func NewToolset(ctrl api.Controller, snap *snapshot.Capturer) *Toolset {
	return &Toolset{ctrl: ctrl, snap: snap}
}

// Tools returns every browser tool.
func (s *Toolset) Tools() []api.Tool {
	return []api.Tool{
		s.navigate(),
		s.goBack(),
		s.goForward(),
		s.snapshot(),
		s.click(),
		s.hover(),
		s.typeText(),
		s.selectOption(),
		s.drag(),
		s.pressKey(),
		s.wait(),
		s.consoleLogs(),
		s.screenshot(),
	}
}

// Register adds every browser tool to reg.
func (s *Toolset) Register(reg api.ToolRegistry) {
	for _, t := range s.Tools() {
		reg.Register(t)
	}
}

// relay sends one action and discards its reply data.
func (s *Toolset) relay(ctx context.Context, action string, payload any) error {
	_, err := s.ctrl.Execute(ctx, api.ActionRequest{Action: action, Params: payload})
	return err
}

// relayThenSnapshot performs action and returns a fresh snapshot of the
// page it left behind.
func (s *Toolset) relayThenSnapshot(ctx context.Context, action string, payload any) (*api.ToolResult, error) {
	if err := s.relay(ctx, action, payload); err != nil {
		return nil, err
	}
	res, err := s.snap.Capture(ctx, "")
	if err != nil {
		return nil, err
	}
	res.Details = map[string]any{"action": action}
	return res, nil
}

// relayAndConfirm is relayThenSnapshot with a leading confirmation block.
func (s *Toolset) relayAndConfirm(ctx context.Context, action string, payload any, confirm string) (*api.ToolResult, error) {
	res, err := s.relayThenSnapshot(ctx, action, payload)
	if err != nil {
		return nil, err
	}
	res.Content = append([]api.ContentBlock{{Type: api.BlockTypeText, Text: confirm}}, res.Content...)
	return res, nil
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

const (
	elementDesc = "Human-readable element description used to obtain permission to interact with the element"
	refDesc     = "Exact target element reference from the page snapshot"
)

func elementParams() map[string]any {
	return map[string]any{
		"element": str(elementDesc),
		"ref":     str(refDesc),
	}
}
