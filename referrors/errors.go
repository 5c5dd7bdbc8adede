package referrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrResolver indicates a document could not be read by any resolver.
	ErrResolver = errors.New("resolver error")

	// ErrParser indicates document content could not be decoded by any parser.
	ErrParser = errors.New("parser error")

	// ErrCircularReference indicates a circular $ref was found while
	// circular references are disallowed.
	ErrCircularReference = errors.New("circular reference")

	// ErrInvalidPointer indicates a JSON Pointer does not exist in its target.
	ErrInvalidPointer = errors.New("invalid pointer")

	// ErrNoMatchingPlugin indicates no plugin accepted the file.
	ErrNoMatchingPlugin = errors.New("no matching plugin")

	// ErrPathTraversal indicates a file read outside the allowed root was blocked.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ResolverError represents a failure to read a document.
// It is returned when no resolver plugin can read the URL, or when every
// matching resolver failed.
type ResolverError struct {
	// URL is the locator that could not be read
	URL string
	// Plugins lists the resolver plugins that were attempted, in order
	Plugins []string
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error (the last plugin failure), if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ResolverError) Error() string {
	msg := "resolver error"
	if e.URL != "" {
		msg += ": " + e.URL
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Plugins) > 1 {
		msg += " (tried " + strings.Join(e.Plugins, ", ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ResolverError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ResolverError) Is(target error) bool {
	return target == ErrResolver
}

// ParserError represents a failure to decode document content.
// It is returned when no parser plugin accepts the file, when every matching
// parser failed, or when empty content was rejected.
type ParserError struct {
	// URL is the locator of the content being parsed
	URL string
	// Plugins lists the parser plugins that were attempted, in order
	Plugins []string
	// Line is the line number where decoding failed (0 if unknown)
	Line int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParserError) Error() string {
	msg := "parser error"
	if e.URL != "" {
		msg += " in " + e.URL
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Plugins) > 1 {
		msg += " (tried " + strings.Join(e.Plugins, ", ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParserError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParserError) Is(target error) bool {
	return target == ErrParser
}

// CircularReferenceError is returned when dereferencing meets a cycle and
// circular references are configured to fail.
type CircularReferenceError struct {
	// Ref is the reference path at which the cycle closed
	Ref string
	// Cycle is the ordered chain of reference paths forming the cycle,
	// starting and ending with the same path
	Cycle []string
	// Locators lists the distinct documents taking part in the cycle
	Locators []string
}

// Error returns a human-readable error message.
func (e *CircularReferenceError) Error() string {
	msg := "circular reference"
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if len(e.Cycle) > 0 {
		msg += " (" + strings.Join(e.Cycle, " -> ") + ")"
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *CircularReferenceError) Is(target error) bool {
	return target == ErrCircularReference
}

// InvalidPointerError represents a JSON Pointer that does not exist in the
// document it points into.
type InvalidPointerError struct {
	// Pointer is the full reference path (URL and fragment)
	Pointer string
	// Token is the pointer segment that could not be resolved
	Token string
	// Message describes why the segment could not be resolved
	Message string
}

// Error returns a human-readable error message.
func (e *InvalidPointerError) Error() string {
	msg := "invalid pointer"
	if e.Pointer != "" {
		msg += ": " + e.Pointer
	}
	if e.Token != "" {
		msg += fmt.Sprintf(" (token %q)", e.Token)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *InvalidPointerError) Is(target error) bool {
	return target == ErrInvalidPointer
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "file_size", "documents"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
