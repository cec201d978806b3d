package llm

import "errors"

// Model invocation errors.
var (
	// ErrUnknownModel indicates the requested model key is not in the registry.
	ErrUnknownModel = errors.New("unknown model key")

	// ErrModelUnavailable indicates the backend could not be reached.
	ErrModelUnavailable = errors.New("model backend unavailable")

	// ErrInvalidResponse indicates the backend returned an unusable response.
	ErrInvalidResponse = errors.New("invalid backend response")
)
