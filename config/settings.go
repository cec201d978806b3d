package config

import (
	"fmt"
	"os"
	"strconv"
)

// Built-in defaults for the server settings.
const (
	DefaultBaseURL = "http://localhost:10000"
	DefaultPort    = 8000
)

// DefaultSettings returns the default value for every settings key.
func DefaultSettings() map[string]string {
	return map[string]string{
		"base_url":        DefaultBaseURL,
		"port":            strconv.Itoa(DefaultPort),
		"feedback_file":   "feedback/feedback.json",
		"memory_file":     "memory/memory.json",
		"transcript_dir":  "transcripts",
		"ledger_capacity": "1000",
		"api_key_hash":    "",
		"jwt_secret":      "",
		"slack_webhook":   "",
		"notify_webhook":  "",
	}
}

// Settings is the typed server configuration.
type Settings struct {
	// BaseURL is the Ollama-compatible backend endpoint.
	BaseURL string

	// Port is the HTTP listen port.
	Port int

	// FeedbackFile is the feedback store snapshot path.
	FeedbackFile string

	// MemoryFile is the conversation memory snapshot path.
	MemoryFile string

	// TranscriptDir is where run transcripts are written.
	TranscriptDir string

	// LedgerCapacity bounds the routing ledger; negative means unbounded.
	LedgerCapacity int

	// APIKeyHash, when non-empty, enables API key auth on the HTTP
	// boundary (sha256 hex of the accepted key).
	APIKeyHash string

	// JWTSecret, when non-empty, enables bearer token auth.
	JWTSecret string

	// SlackWebhook, when non-empty, sends run events to a Slack webhook.
	SlackWebhook string

	// NotifyWebhook, when non-empty, posts run events to a generic
	// HTTP webhook.
	NotifyWebhook string
}

// NewSettingsResolver builds the resolver for the standard settings
// layers rooted at projectDir.
func NewSettingsResolver(projectDir string) *Resolver {
	return NewResolver(ResolverConfig{
		EnvPrefix:       "AGENTFLOW_",
		GlobalConfigDir: "agentflow",
		LocalConfigName: ".agentflow.yaml",
		ProjectDir:      projectDir,
		Defaults:        DefaultSettings(),
	})
}

// LoadSettings resolves settings from defaults, config files, and
// environment for the given project directory.
func LoadSettings(projectDir string) (*Settings, error) {
	return SettingsFrom(NewSettingsResolver(projectDir).Resolve())
}

// SettingsFrom converts a resolved key set into typed Settings.
func SettingsFrom(c *Resolved) (*Settings, error) {
	port, err := strconv.Atoi(c.Get("port"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid port %q: %w", c.Get("port"), err)
	}

	capacity, err := strconv.Atoi(c.Get("ledger_capacity"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid ledger_capacity %q: %w", c.Get("ledger_capacity"), err)
	}

	s := &Settings{
		BaseURL:        c.Get("base_url"),
		Port:           port,
		FeedbackFile:   c.Get("feedback_file"),
		MemoryFile:     c.Get("memory_file"),
		TranscriptDir:  c.Get("transcript_dir"),
		LedgerCapacity: capacity,
		APIKeyHash:     c.Get("api_key_hash"),
		JWTSecret:      c.Get("jwt_secret"),
		SlackWebhook:   c.Get("slack_webhook"),
		NotifyWebhook:  c.Get("notify_webhook"),
	}

	// OLLAMA_BASE_URL is honored when nothing more specific set the
	// base URL, matching the backend's own convention.
	if c.Source("base_url") == SourceDefault {
		if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
			s.BaseURL = v
		}
	}

	return s, nil
}
