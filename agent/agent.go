package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/randalmurphal/agentflow/llm"
	"github.com/randalmurphal/agentflow/memory"
	"github.com/randalmurphal/agentflow/prompt"
	"github.com/randalmurphal/agentflow/router"
)

// HistoryLimit bounds the conversation history to the most recent
// exchanges (10 user/assistant pairs). Older messages are evicted FIFO.
const HistoryLimit = 20

// Config configures an Agent.
type Config struct {
	// Name identifies the agent in logs and defaults. Defaults to "Agent".
	Name string

	// SystemPrompt overrides the agent's system prompt. When empty, the
	// specialized constructors load their embedded default.
	SystemPrompt string

	// Router selects the model key for each input. Required.
	Router *router.Router

	// Client executes completions. Required.
	Client llm.Client

	// Recall, when set, contributes prior-conversation context to each
	// prompt. Optional.
	Recall memory.Recaller

	// RecallK is how many prior conversations to retrieve.
	// Defaults to memory.DefaultRecallK.
	RecallK int

	// Prompts resolves embedded or project-local prompt templates.
	// Defaults to a loader rooted at the current directory.
	Prompts *prompt.Loader

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Agent is the shared conversation loop behind the specialized agents.
// It is safe for concurrent use; history mutation is serialized.
type Agent struct {
	name         string
	systemPrompt string
	router       *router.Router
	client       llm.Client
	recall       memory.Recaller
	recallK      int
	logger       *slog.Logger

	mu      sync.Mutex
	history []llm.Message
}

// New creates a base Agent. Most callers want one of the specialized
// constructors instead.
func New(cfg Config) (*Agent, error) {
	if cfg.Router == nil {
		return nil, ErrNoRouter
	}
	if cfg.Client == nil {
		return nil, ErrNoClient
	}
	if cfg.Name == "" {
		cfg.Name = "Agent"
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = fmt.Sprintf("You are %s, a helpful AI assistant.", cfg.Name)
	}
	if cfg.RecallK <= 0 {
		cfg.RecallK = memory.DefaultRecallK
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Agent{
		name:         cfg.Name,
		systemPrompt: cfg.SystemPrompt,
		router:       cfg.Router,
		client:       cfg.Client,
		recall:       cfg.Recall,
		recallK:      cfg.RecallK,
		logger:       cfg.Logger,
	}, nil
}

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// SystemPrompt returns the agent's active system prompt.
func (a *Agent) SystemPrompt() string { return a.systemPrompt }

// Process routes the input to a model, invokes it with the system prompt,
// conversation history, and optionally recalled context, then records the
// exchange. The override, when non-nil, pins routing characteristics the
// caller already knows.
func (a *Agent) Process(ctx context.Context, input string, ov *router.Overrides) (string, error) {
	modelKey, err := a.router.Select(input, ov)
	if err != nil {
		return "", fmt.Errorf("%s: select model: %w", a.name, err)
	}

	messages := a.buildMessages(ctx, input)

	resp, err := a.client.Complete(ctx, llm.Request{
		ModelKey: modelKey,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%s: complete with %s: %w", a.name, modelKey, err)
	}

	a.appendExchange(input, resp.Content)

	a.logger.Debug("agent exchange",
		"agent", a.name,
		"model", modelKey,
		"input_len", len(input),
		"output_len", len(resp.Content))

	return resp.Content, nil
}

// buildMessages assembles system prompt + recalled context + history +
// current input.
func (a *Agent) buildMessages(ctx context.Context, input string) []llm.Message {
	a.mu.Lock()
	history := make([]llm.Message, len(a.history))
	copy(history, a.history)
	a.mu.Unlock()

	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: a.systemPrompt})

	if a.recall != nil {
		recalled, err := a.recall.GetRelevantContext(ctx, input, a.recallK)
		if err != nil {
			a.logger.Warn("memory recall failed", "agent", a.name, "error", err)
		} else if recalled != "" {
			messages = append(messages, llm.Message{
				Role:    llm.RoleSystem,
				Content: "Relevant context from previous conversations:\n\n" + recalled,
			})
		}
	}

	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: input})
	return messages
}

// appendExchange records one user/assistant pair, evicting the oldest
// messages past HistoryLimit.
func (a *Agent) appendExchange(input, output string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history,
		llm.Message{Role: llm.RoleUser, Content: input},
		llm.Message{Role: llm.RoleAssistant, Content: output},
	)
	if n := len(a.history); n > HistoryLimit {
		a.history = append(a.history[:0], a.history[n-HistoryLimit:]...)
	}
}

// History returns a snapshot of the conversation history.
func (a *Agent) History() []llm.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]llm.Message, len(a.history))
	copy(out, a.history)
	return out
}

// ClearHistory discards the conversation history.
func (a *Agent) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// loadSystemPrompt resolves the named embedded prompt unless the config
// already provides one.
func loadSystemPrompt(cfg *Config, name string) error {
	if cfg.SystemPrompt != "" {
		return nil
	}
	loader := cfg.Prompts
	if loader == nil {
		loader = prompt.NewLoader(".")
	}
	sp, err := loader.Load(name)
	if err != nil {
		return fmt.Errorf("load %s system prompt: %w", name, err)
	}
	cfg.SystemPrompt = sp
	return nil
}
