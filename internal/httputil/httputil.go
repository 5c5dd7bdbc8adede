// Package httputil provides HTTP helpers shared by the HTTP resolver and the
// MCP server's URL input.
package httputil

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// HTTP status code boundaries
const (
	MinSuccessCode = 200 // Lowest 2xx status code
	MaxSuccessCode = 299 // Highest 2xx status code
)

// IsSuccess reports whether code is a 2xx status code.
func IsSuccess(code int) bool {
	return code >= MinSuccessCode && code <= MaxSuccessCode
}

// StatusError describes a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// contentTypeExtensions maps media types to the file extension whose parser
// understands them.
var contentTypeExtensions = map[string]string{
	"application/json":         ".json",
	"application/schema+json":  ".json",
	"application/problem+json": ".json",
	"application/yaml":         ".yaml",
	"application/x-yaml":       ".yaml",
	"text/yaml":                ".yaml",
	"text/x-yaml":              ".yaml",
	"application/toml":         ".toml",
	"application/xml":          ".xml",
	"text/xml":                 ".xml",
	"text/plain":               ".txt",
	"text/html":                ".html",
	"text/markdown":            ".md",
	"application/octet-stream": ".bin",
}

// ExtensionForContentType returns the file extension conventionally used for
// a Content-Type header value, or "" when the media type is unknown or invalid.
// Parameters such as charset are ignored; "+json" and "+xml" structured syntax
// suffixes map to ".json" and ".xml".
func ExtensionForContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	mediaType = strings.ToLower(mediaType)
	if ext, ok := contentTypeExtensions[mediaType]; ok {
		return ext
	}
	switch {
	case strings.HasSuffix(mediaType, "+json"):
		return ".json"
	case strings.HasSuffix(mediaType, "+xml"):
		return ".xml"
	case strings.HasSuffix(mediaType, "+yaml"):
		return ".yaml"
	}
	return ""
}
