// ABOUTME: Argument extraction helpers shared by the built-in tools
// ABOUTME: Shape failures wrap tools.ErrInvalidArgs for dispatcher classification

package builtins

import (
	"fmt"

	"github.com/saib0ndi/Coding-AI-Assistant/internal/tools"
)

// requiredString returns args[name] as a string, failing when the key is
// absent or holds a different type.
func requiredString(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("%w: missing required parameter: %s", tools.ErrInvalidArgs, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter %s must be a string", tools.ErrInvalidArgs, name)
	}
	return s, nil
}

// optionalString returns args[name] as a string, or fallback when absent.
func optionalString(args map[string]any, name, fallback string) (string, error) {
	v, ok := args[name]
	if !ok {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter %s must be a string", tools.ErrInvalidArgs, name)
	}
	return s, nil
}

// optionalInt returns args[name] as an int, or fallback when absent.
// JSON numbers decode as float64, so both forms are accepted.
func optionalInt(args map[string]any, name string, fallback int) (int, error) {
	v, ok := args[name]
	if !ok {
		return fallback, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("%w: parameter %s must be a number", tools.ErrInvalidArgs, name)
	}
}
