package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectConfig(t *testing.T) {
	tests := []struct {
		context string
		mode    Mode
		budget  int
		content bool
		layout  bool
	}{
		{"filling out a login form", ModeForm, 8000, false, false},
		{`Typed "hello" into "Search"`, ModeForm, 8000, false, false},
		{"INPUT", ModeForm, 8000, false, false},
		{"Navigated to https://example.com", ModeNavigation, 12000, true, false},
		{`Clicked "Next"`, ModeNavigation, 12000, true, false},
		{`Hovered over "Profile"`, ModeInteraction, 15000, true, true},
		{"", ModeInteraction, 15000, true, true},
		// form wins over click when both appear.
		{`Clicked "Contact form"`, ModeForm, 8000, false, false},
	}
	for _, tt := range tests {
		cfg := SelectConfig("https://example.com", tt.context)
		assert.Equal(t, tt.mode, cfg.Mode, tt.context)
		assert.Equal(t, tt.budget, cfg.MaxTokens, tt.context)
		assert.Equal(t, tt.content, cfg.IncludeContent, tt.context)
		assert.Equal(t, tt.layout, cfg.IncludeLayout, tt.context)
		assert.NotEmpty(t, cfg.PriorityElements)
	}
}

func TestSelectConfigIgnoresURL(t *testing.T) {
	assert.Equal(t, SelectConfig("https://a.example/form", "wait"), SelectConfig("", "wait"))
}
