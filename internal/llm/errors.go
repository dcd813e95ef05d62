package llm

import "errors"

var (
	// ErrNotConfigured indicates no API credential or endpoint is set.
	// This is a configuration error, distinct from runtime provider failures.
	ErrNotConfigured = errors.New("llm not configured: set OPENAI_API_KEY or OPENAI_BASE_URL")

	// ErrUnavailable indicates the provider request failed at runtime
	// (network, rate limit, server error).
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrEmptyCompletion indicates the provider returned no usable text.
	// Callers decide the fallback; enhancement paths reuse the original
	// input silently.
	ErrEmptyCompletion = errors.New("llm returned empty completion")

	// ErrInvalidOutput indicates the completion text could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")
)
