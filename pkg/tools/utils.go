package tools

import (
	"encoding/base64"
	"strings"
)

// Base64Encode converts a byte slice to a Base64 string
func Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Base64Decode converts a Base64 string back to a byte slice
func Base64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// SplitDataURL separates a "data:<mime>;base64,<payload>" string into its
// MIME type and payload. Anything else is returned unchanged with an empty
// MIME type.
func SplitDataURL(s string) (mime, payload string) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", s
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", s
	}
	return strings.TrimSuffix(meta, ";base64"), payload
}
