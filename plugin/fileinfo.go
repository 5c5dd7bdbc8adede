package plugin

import (
	"errors"

	"github.com/erraggy/refparser/internal/locator"
)

// ErrEmptyFile is the failure of a parser that does not accept empty content.
var ErrEmptyFile = errors.New("empty file")

// FileInfo is everything a plugin learns about the file it handles.
type FileInfo struct {
	// URL is the document locator, without fragment
	URL string
	// Extension is the lowercase file extension including the dot (".yaml"),
	// or "" when the locator has none
	Extension string
	// Data is the raw content; empty while resolvers run
	Data []byte
	// Resolver is the name of the resolver that read Data
	Resolver string
}

// NewFileInfo returns a FileInfo for url with its fragment removed and its
// extension computed.
func NewFileInfo(url string) *FileInfo {
	url = locator.StripHash(url)
	return &FileInfo{URL: url, Extension: locator.Extension(url)}
}

type undefinedValue struct{}

// Undefined is the value of a structured document that holds nothing, such as
// an empty JSON or YAML file.
var Undefined = undefinedValue{}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedValue)
	return ok
}

func (undefinedValue) String() string { return "undefined" }

// MarshalJSON encodes Undefined as null.
func (undefinedValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalYAML encodes Undefined as null.
func (undefinedValue) MarshalYAML() (any, error) { return nil, nil }
