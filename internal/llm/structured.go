package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validator checks a decoded value after JSON extraction. Return a
// descriptive error to reject the payload.
type Validator[T any] func(T) error

// ExtractJSON locates a JSON object of type T inside raw completion text.
// Models wrap structured payloads in prose and markdown fences; this strips
// fences, finds the first balanced { ... } block, and decodes it. A non-nil
// validator runs before the value is returned. All failures wrap
// ErrInvalidOutput so callers can tell a parse failure from a provider one.
func ExtractJSON[T any](raw string, validator Validator[T]) (T, error) {
	var zero T

	block := firstJSONBlock(stripFences(raw))
	if block == "" {
		return zero, fmt.Errorf("%w: no JSON object in completion", ErrInvalidOutput)
	}

	var value T
	if err := json.Unmarshal([]byte(block), &value); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}
	return value, nil
}

// stripFences drops markdown code fence lines (``` or ```json) so the brace
// scanner only sees payload text.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// firstJSONBlock returns the first balanced top-level { ... } block,
// respecting string literals and escapes.
func firstJSONBlock(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
