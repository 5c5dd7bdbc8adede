package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v4"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/erraggy/refparser/referrors"
)

// DefaultTextEncoding is the text parser's default character encoding.
const DefaultTextEncoding = "utf-8"

// textExtensions are the extensions the text parser handles by default.
var textExtensions = []string{
	".txt", ".text", ".md", ".markdown", ".htm", ".html", ".css", ".scss", ".less",
	".csv", ".tsv", ".svg", ".js", ".mjs", ".ts", ".map", ".go", ".py", ".sh",
	".sql", ".graphql", ".gql", ".ini", ".properties", ".log",
}

func isBlank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// NewJSONParser returns the built-in JSON parser.
func NewJSONParser() Parser {
	return Parser{
		Name:       NameJSON,
		Order:      OrderJSON,
		CanParse:   Extensions(".json"),
		AllowEmpty: true,
		Parse: func(_ context.Context, file *FileInfo) (any, error) {
			if isBlank(file.Data) {
				return Undefined, nil
			}
			var v any
			if err := json.Unmarshal(file.Data, &v); err != nil {
				return nil, jsonError(file, err)
			}
			return v, nil
		},
	}
}

// jsonError attaches a line number to JSON syntax errors.
func jsonError(file *FileInfo, err error) error {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	offset := min(int(syntaxErr.Offset), len(file.Data))
	line := 1 + bytes.Count(file.Data[:offset], []byte("\n"))
	return &referrors.ParserError{
		URL:     file.URL,
		Line:    line,
		Message: "invalid JSON",
		Cause:   err,
	}
}

// NewYAMLParser returns the built-in YAML parser. YAML is a superset of JSON,
// so it also handles .json files the JSON parser rejected.
func NewYAMLParser() Parser {
	return Parser{
		Name:       NameYAML,
		Order:      OrderYAML,
		CanParse:   Extensions(".yaml", ".yml", ".json"),
		AllowEmpty: true,
		Parse: func(_ context.Context, file *FileInfo) (any, error) {
			if isBlank(file.Data) {
				return Undefined, nil
			}
			var v any
			if err := yaml.Unmarshal(file.Data, &v); err != nil {
				return nil, err
			}
			if v == nil {
				// comments only
				return Undefined, nil
			}
			return normalizeYAML(v), nil
		},
	}
}

// normalizeYAML converts mappings with non-string keys into map[string]any
// so that every document tree has the same shape regardless of its format.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeYAML(child)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, child := range t {
			m[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return m
	case []any:
		for i, child := range t {
			t[i] = normalizeYAML(child)
		}
		return t
	default:
		return v
	}
}

// NewTOMLParser returns the built-in TOML parser.
func NewTOMLParser() Parser {
	return Parser{
		Name:       NameTOML,
		Order:      OrderTOML,
		CanParse:   Extensions(".toml"),
		AllowEmpty: true,
		Parse: func(_ context.Context, file *FileInfo) (any, error) {
			if isBlank(file.Data) {
				return Undefined, nil
			}
			var m map[string]any
			if err := toml.Unmarshal(file.Data, &m); err != nil {
				var decodeErr *toml.DecodeError
				if errors.As(err, &decodeErr) {
					row, _ := decodeErr.Position()
					return nil, &referrors.ParserError{URL: file.URL, Line: row, Message: "invalid TOML", Cause: err}
				}
				return nil, err
			}
			return normalizeTOML(m), nil
		},
	}
}

// normalizeTOML turns TOML arrays of tables ([]map[string]any) into []any.
func normalizeTOML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeTOML(child)
		}
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = normalizeTOML(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalizeTOML(child)
		}
		return t
	default:
		return v
	}
}

// NewTextParser returns the built-in text parser, decoding content from the
// named character encoding (any name known to the WHATWG encoding standard,
// e.g. "utf-8", "latin1", "shift_jis"). An empty name means UTF-8.
func NewTextParser(encoding string) (Parser, error) {
	if encoding == "" {
		encoding = DefaultTextEncoding
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return Parser{}, &referrors.ConfigError{Option: "text encoding", Value: encoding, Cause: err}
	}
	canonical, _ := htmlindex.Name(enc)
	return Parser{
		Name:       NameText,
		Order:      OrderText,
		CanParse:   Extensions(textExtensions...),
		AllowEmpty: true,
		Parse: func(_ context.Context, file *FileInfo) (any, error) {
			if len(file.Data) == 0 {
				return "", nil
			}
			if strings.EqualFold(canonical, "utf-8") {
				return string(file.Data), nil
			}
			out, err := enc.NewDecoder().Bytes(file.Data)
			if err != nil {
				return nil, fmt.Errorf("decoding %s: %w", canonical, err)
			}
			return string(out), nil
		},
	}, nil
}

// NewBinaryParser returns the built-in binary parser. It is a fallback that
// handles files no other parser matches and returns the raw bytes.
func NewBinaryParser() Parser {
	return Parser{
		Name:       NameBinary,
		Order:      OrderBinary,
		CanParse:   Always(),
		AllowEmpty: true,
		Fallback:   true,
		Parse: func(_ context.Context, file *FileInfo) (any, error) {
			if file.Data == nil {
				return []byte{}, nil
			}
			return file.Data, nil
		},
	}
}
