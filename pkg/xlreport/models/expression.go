// Package models defines the compiled report structure.
package models

import (
	"errors"
	"strings"
)

// ErrUnterminatedPlaceholder indicates a "${" without a matching "}".
var ErrUnterminatedPlaceholder = errors.New("unterminated placeholder")

// Expression is deferred expression text. It is stored verbatim and
// evaluated by the rendering engine against runtime data.
type Expression string

// IsEmpty reports whether the expression has no text.
func (e Expression) IsEmpty() bool {
	return strings.TrimSpace(string(e)) == ""
}

// IsConstant reports whether the expression contains no ${...} placeholders.
func (e Expression) IsConstant() bool {
	return !strings.Contains(string(e), "${")
}

// Placeholders returns the bodies of the ${...} placeholders in order.
// Braces nest inside a placeholder body.
func (e Expression) Placeholders() ([]string, error) {
	s := string(e)
	var out []string
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			return out, nil
		}
		depth := 0
		end := -1
		for i := start + 2; i < len(s); i++ {
			switch s[i] {
			case '{':
				depth++
			case '}':
				if depth == 0 {
					end = i
				} else {
					depth--
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			return out, ErrUnterminatedPlaceholder
		}
		out = append(out, s[start+2:end])
		s = s[end+1:]
	}
}

func (e Expression) String() string {
	return string(e)
}
