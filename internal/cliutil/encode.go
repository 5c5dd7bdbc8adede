package cliutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Output format constants
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatYAML}

// ErrCircularOutput is returned when a document holding circular references
// is encoded.
var ErrCircularOutput = errors.New("document contains circular references and cannot be serialized; bundle it instead")

// ValidateFormat returns an error for an unsupported output format.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s", format, strings.Join(Formats, ", "))
	}
	return nil
}

// FormatFor returns the output format matching a file path's extension, or
// fallback when the extension is neither JSON nor YAML.
func FormatFor(path, fallback string) string {
	switch {
	case strings.HasSuffix(path, ".json"):
		return FormatJSON
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return FormatYAML
	}
	return fallback
}

// Encode marshals doc as indented JSON or YAML, ending with a newline.
func Encode(doc any, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("marshaling to %s: %w", format, err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshaling to %s: %w", format, err)
		}
		return data, nil
	}
	return nil, ValidateFormat(format)
}
