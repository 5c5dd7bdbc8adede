package referrors

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestResolverError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ResolverError{
			URL:     "https://example.com/schema.json",
			Plugins: []string{"http", "mirror"},
			Message: "all resolvers failed",
			Cause:   errors.New("HTTP 404"),
		}
		want := "resolver error: https://example.com/schema.json: all resolvers failed (tried http, mirror): HTTP 404"
		if err.Error() != want {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &ResolverError{}
		if err.Error() != "resolver error" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("single plugin is not listed", func(t *testing.T) {
		err := &ResolverError{URL: "a.json", Plugins: []string{"file"}}
		if err.Error() != "resolver error: a.json" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is and Unwrap", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &ResolverError{URL: "a.json", Cause: os.ErrNotExist})
		if !errors.Is(err, ErrResolver) {
			t.Error("expected errors.Is(err, ErrResolver)")
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Error("expected cause to be reachable")
		}
		if errors.Is(err, ErrParser) {
			t.Error("resolver error must not match ErrParser")
		}
	})
}

func TestParserError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ParserError{
			URL:     "/tmp/a.yaml",
			Line:    3,
			Message: "invalid syntax",
			Cause:   errors.New("mapping values are not allowed"),
		}
		want := "parser error in /tmp/a.yaml at line 3: invalid syntax: mapping values are not allowed"
		if err.Error() != want {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("no matching plugin", func(t *testing.T) {
		err := &ParserError{URL: "a.foo", Cause: ErrNoMatchingPlugin}
		if !errors.Is(err, ErrNoMatchingPlugin) || !errors.Is(err, ErrParser) {
			t.Error("expected both ErrParser and ErrNoMatchingPlugin")
		}
	})
}

func TestCircularReferenceError(t *testing.T) {
	err := &CircularReferenceError{
		Ref:      "#/definitions/a",
		Cycle:    []string{"#/definitions/a", "#/definitions/b", "#/definitions/a"},
		Locators: []string{"/schemas/root.json"},
	}
	want := "circular reference: #/definitions/a (#/definitions/a -> #/definitions/b -> #/definitions/a)"
	if err.Error() != want {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(fmt.Errorf("dereference: %w", err), ErrCircularReference) {
		t.Error("expected errors.Is(err, ErrCircularReference)")
	}

	var target *CircularReferenceError
	if !errors.As(fmt.Errorf("x: %w", err), &target) || len(target.Cycle) != 3 {
		t.Error("expected errors.As to extract the cycle")
	}
}

func TestInvalidPointerError(t *testing.T) {
	err := &InvalidPointerError{Pointer: "a.json#/foo/bar", Token: "bar", Message: "missing key"}
	if err.Error() != `invalid pointer: a.json#/foo/bar (token "bar"): missing key` {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrInvalidPointer) {
		t.Error("expected errors.Is(err, ErrInvalidPointer)")
	}
}

func TestResourceLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  *ResourceLimitError
		want string
	}{
		{"empty", &ResourceLimitError{}, "resource limit exceeded"},
		{"limit only", &ResourceLimitError{ResourceType: "file_size", Limit: 10}, "resource limit exceeded: file_size (limit: 10)"},
		{"limit and actual", &ResourceLimitError{ResourceType: "documents", Limit: 2, Actual: 3, Message: "too many documents"},
			"resource limit exceeded: documents (limit: 2, actual: 3): too many documents"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("got %q, want %q", tt.err.Error(), tt.want)
			}
			if !errors.Is(tt.err, ErrResourceLimit) {
				t.Error("expected errors.Is(err, ErrResourceLimit)")
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("bad value")
	err := &ConfigError{Option: "circular", Value: "sometimes", Message: "unknown mode", Cause: cause}
	if err.Error() != "configuration error for circular (value: sometimes): unknown mode: bad value" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrConfig) || !errors.Is(err, cause) {
		t.Error("expected ErrConfig and cause in chain")
	}
}
