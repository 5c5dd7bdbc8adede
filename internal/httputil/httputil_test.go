package httputil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected bool
	}{
		{"ok", 200, true},
		{"no content", 204, true},
		{"upper bound", 299, true},
		{"redirect", 302, false},
		{"not found", 404, false},
		{"server error", 500, false},
		{"informational", 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSuccess(tt.code))
		})
	}
}

func TestStatusError(t *testing.T) {
	err := &StatusError{URL: "https://example.com/a.json", StatusCode: 404}
	assert.Equal(t, "HTTP 404 Not Found: https://example.com/a.json", err.Error())
}

func TestExtensionForContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		expected    string
	}{
		{"json", "application/json", ".json"},
		{"json with charset", "application/json; charset=utf-8", ".json"},
		{"upper case", "Application/JSON", ".json"},
		{"schema json", "application/schema+json", ".json"},
		{"vendor json suffix", "application/vnd.api+json", ".json"},
		{"yaml", "application/yaml", ".yaml"},
		{"text yaml", "text/x-yaml", ".yaml"},
		{"toml", "application/toml", ".toml"},
		{"xml", "text/xml", ".xml"},
		{"atom xml suffix", "application/atom+xml", ".xml"},
		{"plain text", "text/plain; charset=iso-8859-1", ".txt"},
		{"unknown", "image/png", ""},
		{"empty", "", ""},
		{"malformed", "this is not a media type", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtensionForContentType(tt.contentType))
		})
	}
}
