package api

import (
	"context"
)

// Tool defines the structural interface for any browser capability exposed
// to the protocol layer. It includes metadata for the input JSON Schema
// and the execution logic itself.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema "properties" object of the tool input.
	Parameters() map[string]any
	RequiredParameters() []string
	// Execute performs the actual tool logic using the provided argument map.
	Execute(ctx context.Context, args map[string]any) (*ToolResult, error)
}

// ToolResult encapsulates the outcome of a tool execution.
// It can contain multiple content blocks (text, images) and
// arbitrary metadata for the handler to process.
type ToolResult struct {
	Content []ContentBlock `json:"content"`           // Ordered blocks of result data
	Details map[string]any `json:"details,omitempty"` // Arbitrary technical metadata
}

// ContentBlock is an atomic data unit within a ToolResult.
type ContentBlock struct {
	Type     string `json:"type"`                // Data format: "text" or "image"
	Text     string `json:"text,omitempty"`      // String content (for text type)
	Data     string `json:"data,omitempty"`      // Base64 encoded image data (for image type)
	MimeType string `json:"mime_type,omitempty"` // MIME type for image data (e.g., "image/png")
}

// Content block type values.
const (
	BlockTypeText  = "text"
	BlockTypeImage = "image"
)

// NewTextResult wraps a single text block.
func NewTextResult(text string) *ToolResult {
	return &ToolResult{Content: []ContentBlock{{Type: BlockTypeText, Text: text}}}
}

// ToolRegistry defines the interface for managing and accessing tools.
type ToolRegistry interface {
	Register(tool Tool)
	Unregister(name string)
	Get(name string) (Tool, bool)
	GetAll() []Tool
}
