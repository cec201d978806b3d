package router

import "errors"

// Routing errors.
var (
	// ErrUnknownModel indicates routing resolved to a model key that is
	// not configured in the model registry.
	ErrUnknownModel = errors.New("unknown model key")
)
