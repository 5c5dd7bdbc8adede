// Package options provides shared utilities for option validation across packages.
package options

import "github.com/erraggy/refparser/referrors"

// ValidateSingleInputSource ensures exactly one input source is specified.
// sources is a variadic list of booleans indicating whether each source is set.
// noSourceMsg is the error message when no source is specified.
// multiSourceMsg is the error message when multiple sources are specified.
// Returns a *referrors.ConfigError if zero or more than one input source is
// specified.
func ValidateSingleInputSource(noSourceMsg, multiSourceMsg string, sources ...bool) error {
	sourceCount := 0
	for _, hasSource := range sources {
		if hasSource {
			sourceCount++
		}
	}

	if sourceCount == 0 {
		return &referrors.ConfigError{Option: "input", Message: noSourceMsg}
	}
	if sourceCount > 1 {
		return &referrors.ConfigError{Option: "input", Value: sourceCount, Message: multiSourceMsg}
	}

	return nil
}

// NonNegative returns a *referrors.ConfigError naming option when value is
// negative.
func NonNegative[T ~int | ~int64](option string, value T) error {
	if value < 0 {
		return &referrors.ConfigError{Option: option, Value: value, Message: "cannot be negative"}
	}
	return nil
}
