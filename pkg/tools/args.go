package tools

import (
	"errors"
	"fmt"
)

// ErrInvalidArguments marks a tool call whose arguments failed validation.
var ErrInvalidArguments = errors.New("invalid arguments")

func invalid(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArguments, fmt.Sprintf(format, a...))
}

// StringArg returns the required string argument name.
func StringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", invalid("missing required argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", invalid("argument %q must be a string, got %T", name, v)
	}
	return s, nil
}

// BoolArg returns the required boolean argument name.
func BoolArg(args map[string]any, name string) (bool, error) {
	v, ok := args[name]
	if !ok {
		return false, invalid("missing required argument %q", name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, invalid("argument %q must be a boolean, got %T", name, v)
	}
	return b, nil
}

// NumberArg returns the required numeric argument name. JSON numbers decode
// as float64; integer Go values are accepted too.
func NumberArg(args map[string]any, name string) (float64, error) {
	v, ok := args[name]
	if !ok {
		return 0, invalid("missing required argument %q", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, invalid("argument %q must be a number, got %T", name, v)
	}
}

// StringSliceArg returns the required array-of-strings argument name.
func StringSliceArg(args map[string]any, name string) ([]string, error) {
	v, ok := args[name]
	if !ok {
		return nil, invalid("missing required argument %q", name)
	}
	switch items := v.(type) {
	case []string:
		return items, nil
	case []any:
		out := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, invalid("argument %q[%d] must be a string, got %T", name, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalid("argument %q must be an array of strings, got %T", name, v)
	}
}
