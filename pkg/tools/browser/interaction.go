package browser

import (
	"context"
	"fmt"

	"browsermcp/pkg/api"
	"browsermcp/pkg/tools"
)

// elementTarget reads the element/ref pair every element action carries.
func elementTarget(args map[string]any) (element, ref string, err error) {
	if element, err = tools.StringArg(args, "element"); err != nil {
		return "", "", err
	}
	if ref, err = tools.StringArg(args, "ref"); err != nil {
		return "", "", err
	}
	return element, ref, nil
}

func (s *Toolset) click() *browserTool {
	return &browserTool{
		name:        "browser_click",
		description: "Perform click on a web page",
		params:      elementParams(),
		required:    []string{"element", "ref"},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			element, ref, err := elementTarget(args)
			if err != nil {
				return nil, err
			}
			payload := map[string]any{"element": element, "ref": ref}
			return s.relayAndConfirm(ctx, "browser_click", payload, fmt.Sprintf("Clicked \"%s\"", element))
		},
	}
}

func (s *Toolset) hover() *browserTool {
	return &browserTool{
		name:        "browser_hover",
		description: "Hover over element on page",
		params:      elementParams(),
		required:    []string{"element", "ref"},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			element, ref, err := elementTarget(args)
			if err != nil {
				return nil, err
			}
			payload := map[string]any{"element": element, "ref": ref}
			return s.relayAndConfirm(ctx, "browser_hover", payload, fmt.Sprintf("Hovered over \"%s\"", element))
		},
	}
}

func (s *Toolset) typeText() *browserTool {
	params := elementParams()
	params["text"] = str("Text to type into the element")
	params["submit"] = map[string]any{"type": "boolean", "description": "Whether to submit entered text (press Enter after)"}

	return &browserTool{
		name:        "browser_type",
		description: "Type text into editable element",
		params:      params,
		required:    []string{"element", "ref", "text", "submit"},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			element, ref, err := elementTarget(args)
			if err != nil {
				return nil, err
			}
			text, err := tools.StringArg(args, "text")
			if err != nil {
				return nil, err
			}
			submit, err := tools.BoolArg(args, "submit")
			if err != nil {
				return nil, err
			}
			payload := map[string]any{"element": element, "ref": ref, "text": text, "submit": submit}
			return s.relayAndConfirm(ctx, "browser_type", payload, fmt.Sprintf("Typed \"%s\" into \"%s\"", text, element))
		},
	}
}

func (s *Toolset) selectOption() *browserTool {
	params := elementParams()
	params["values"] = map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": "Array of values to select in the dropdown. This can be a single value or multiple values.",
	}

	return &browserTool{
		name:        "browser_select_option",
		description: "Select an option in a dropdown",
		params:      params,
		required:    []string{"element", "ref", "values"},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			element, ref, err := elementTarget(args)
			if err != nil {
				return nil, err
			}
			values, err := tools.StringSliceArg(args, "values")
			if err != nil {
				return nil, err
			}
			payload := map[string]any{"element": element, "ref": ref, "values": values}
			return s.relayAndConfirm(ctx, "browser_select_option", payload, fmt.Sprintf("Selected option in \"%s\"", element))
		},
	}
}

func (s *Toolset) drag() *browserTool {
	return &browserTool{
		name:        "browser_drag",
		description: "Drag element to another location",
		params: map[string]any{
			"startElement": str("Starting element description"),
			"endElement":   str("Target element description"),
		},
		required: []string{"startElement", "endElement"},
		run: func(ctx context.Context, args map[string]any) (*api.ToolResult, error) {
			start, err := tools.StringArg(args, "startElement")
			if err != nil {
				return nil, err
			}
			end, err := tools.StringArg(args, "endElement")
			if err != nil {
				return nil, err
			}
			payload := map[string]any{"startElement": start, "endElement": end}
			return s.relayAndConfirm(ctx, "browser_drag", payload, fmt.Sprintf("Dragged \"%s\" to \"%s\"", start, end))
		},
	}
}
