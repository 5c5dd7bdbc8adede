package dereferencer

import (
	"fmt"
	"strings"
)

// CircularMode selects how circular references are handled.
type CircularMode int

const (
	// CircularAllow keeps each circular reference as a pointer back to the
	// enclosing value, producing a self-referencing structure, and logs a
	// warning. This is the default.
	CircularAllow CircularMode = iota
	// CircularError fails the operation with a *referrors.CircularReferenceError.
	CircularError
	// CircularIgnore produces the same structure as CircularAllow without the
	// warning. Refs.Circular is then the only signal.
	CircularIgnore
)

// String returns the configuration name of the mode.
func (m CircularMode) String() string {
	switch m {
	case CircularAllow:
		return "allow"
	case CircularError:
		return "error"
	case CircularIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("CircularMode(%d)", int(m))
	}
}

// ParseCircularMode converts a configuration value to a CircularMode. Besides
// the mode names, "true" means allow and "false" means error.
func ParseCircularMode(s string) (CircularMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow", "true":
		return CircularAllow, nil
	case "error", "false":
		return CircularError, nil
	case "ignore":
		return CircularIgnore, nil
	default:
		return CircularAllow, fmt.Errorf("dereferencer: unknown circular mode %q (want allow, error or ignore)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m CircularMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CircularMode) UnmarshalText(text []byte) error {
	mode, err := ParseCircularMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
