// Package llm is the model invocation boundary: a Client interface for
// turning chat messages into text, a Registry of configured backend
// models, and an Ollama-backed Client implementation.
//
// The orchestration engine only ever sees the Client interface; swapping
// backends (or injecting a fake in tests) requires no engine changes.
package llm
