package snapshot

import "strings"

// Mode names a compression profile.
type Mode string

const (
	ModeForm        Mode = "form"
	ModeNavigation  Mode = "navigation"
	ModeInteraction Mode = "interaction"
)

// Config is the compression profile chosen for one capture.
type Config struct {
	Mode             Mode
	MaxTokens        int      // character budget
	PriorityElements []string // informational only
	IncludeContent   bool     // whether optional lines may be emitted
	IncludeLayout    bool     // reserved; the compressor does not read it
}

// SelectConfig picks the profile from the action context. The context is
// matched lower-cased; url is accepted for future use and does not affect
// the choice.
func SelectConfig(url, actionContext string) Config {
	_ = url
	ctx := strings.ToLower(actionContext)
	has := func(sub string) bool { return strings.Contains(ctx, sub) }

	switch {
	case has("form") || has("input") || has("type"):
		return Config{
			Mode:             ModeForm,
			MaxTokens:        8000,
			PriorityElements: []string{"textbox", "button", "combobox", "checkbox", "radio", "heading"},
		}
	case has("navigate") || has("click"):
		return Config{
			Mode:             ModeNavigation,
			MaxTokens:        12000,
			PriorityElements: []string{"link", "button", "heading", "navigation", "menu"},
			IncludeContent:   true,
		}
	default:
		return Config{
			Mode:             ModeInteraction,
			MaxTokens:        15000,
			PriorityElements: []string{"button", "link", "textbox", "heading", "list", "article"},
			IncludeContent:   true,
			IncludeLayout:    true,
		}
	}
}
