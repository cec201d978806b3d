package agent

import "errors"

var (
	// ErrNoRouter indicates an agent was constructed without a model router.
	ErrNoRouter = errors.New("agent: router is required")

	// ErrNoClient indicates an agent was constructed without an LLM client.
	ErrNoClient = errors.New("agent: llm client is required")
)
