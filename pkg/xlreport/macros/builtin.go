package macros

import (
	"fmt"
	"strings"
)

func builtins() map[string]Func {
	return map[string]Func{
		"upper":    stringFunc(strings.ToUpper),
		"lower":    stringFunc(strings.ToLower),
		"trim":     stringFunc(strings.TrimSpace),
		"concat":   concat,
		"coalesce": coalesce,
	}
}

func stringFunc(fn func(string) string) Func {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		if args[0] == nil {
			return nil, nil
		}
		return fn(text(args[0])), nil
	}
}

func concat(args ...any) (any, error) {
	var sb strings.Builder
	for _, a := range args {
		if a != nil {
			sb.WriteString(text(a))
		}
	}
	return sb.String(), nil
}

// coalesce returns the first argument that is neither nil nor an empty string.
func coalesce(args ...any) (any, error) {
	for _, a := range args {
		if a == nil {
			continue
		}
		if s, ok := a.(string); ok && s == "" {
			continue
		}
		return a, nil
	}
	return nil, nil
}

func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
