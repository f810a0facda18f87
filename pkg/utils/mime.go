package utils

import (
	"net/http"
	"strings"
)

// DetectImageMime sniffs the MIME type of decoded image bytes. Data that is
// empty or does not sniff as an image yields fallback.
func DetectImageMime(data []byte, fallback string) string {
	if len(data) == 0 {
		return fallback
	}
	if mimeType := http.DetectContentType(data); strings.HasPrefix(mimeType, "image/") {
		return mimeType
	}
	return fallback
}
