package gateway

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the outbound request frame. A nil Data is left out of the
// encoded frame entirely.
type Envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Reply is the inbound frame. Only id, data and error are read; any other
// fields the extension sends are ignored.
type Reply struct {
	ID    string              `json:"id"`
	Data  jsoniter.RawMessage `json:"data"`
	Error jsoniter.RawMessage `json:"error,omitempty"`
}

// ErrorText returns the reply's error as plain text, or "" if none was set.
func (r *Reply) ErrorText() string {
	if len(r.Error) == 0 || string(r.Error) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return s
	}
	return string(r.Error)
}
