package llm

import (
	"fmt"
	"sort"
)

// DefaultBaseURL is where the Ollama-compatible backend listens by default.
const DefaultBaseURL = "http://localhost:10000"

// ModelConfig describes one configured backend model.
type ModelConfig struct {
	// Model is the backend's model identifier (e.g., "phi3:mini").
	Model string `yaml:"model" json:"model"`

	// MaxTokens is the context window requested from the backend.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Temperature is the sampling temperature.
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// Capabilities describe what the model is good at. Informational.
	Capabilities []string `yaml:"capabilities" json:"capabilities"`
}

// Registry maps model keys to backend model configurations. A Registry is
// immutable after construction and safe for concurrent reads.
type Registry struct {
	models map[string]ModelConfig
}

// DefaultModels returns the standard three-model configuration: a fast
// small model, a general coding model, and a large multilingual model.
func DefaultModels() map[string]ModelConfig {
	return map[string]ModelConfig{
		"phi3": {
			Model:        "phi3:mini",
			MaxTokens:    2048,
			Temperature:  0.7,
			Capabilities: []string{"general", "reasoning", "fast"},
		},
		"gemma3": {
			Model:        "gemma3:latest",
			MaxTokens:    4096,
			Temperature:  0.7,
			Capabilities: []string{"general", "coding", "analysis"},
		},
		"qwen3": {
			Model:        "qwen3:latest",
			MaxTokens:    8192,
			Temperature:  0.7,
			Capabilities: []string{"general", "multilingual", "complex"},
		},
	}
}

// NewRegistry creates a Registry from the given model table. A nil table
// yields the default models.
func NewRegistry(models map[string]ModelConfig) *Registry {
	if models == nil {
		models = DefaultModels()
	}
	out := make(map[string]ModelConfig, len(models))
	for k, v := range models {
		out[k] = v
	}
	return &Registry{models: out}
}

// Known reports whether a model key is configured.
func (r *Registry) Known(key string) bool {
	_, ok := r.models[key]
	return ok
}

// Get returns the configuration for a model key.
func (r *Registry) Get(key string) (ModelConfig, error) {
	cfg, ok := r.models[key]
	if !ok {
		return ModelConfig{}, fmt.Errorf("%w: %q", ErrUnknownModel, key)
	}
	return cfg, nil
}

// Keys returns all configured model keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.models))
	for k := range r.models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
