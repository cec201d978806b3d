package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	agenthttp "github.com/randalmurphal/agentflow/http"
)

// OllamaClient implements Client against an Ollama-compatible /api/chat
// endpoint. Transient backend failures are retried with exponential
// backoff by the underlying HTTP client.
type OllamaClient struct {
	http     *agenthttp.Client
	registry *Registry
	logger   *slog.Logger
}

// OllamaConfig configures an OllamaClient.
type OllamaConfig struct {
	// BaseURL is the backend base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Registry resolves model keys. Defaults to the default registry.
	Registry *Registry

	// HTTPClient overrides the retrying HTTP client (for tests).
	HTTPClient *agenthttp.Client

	// Logger logs completions at debug level. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewOllamaClient creates a client for an Ollama-compatible backend.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry(nil)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = agenthttp.NewClient(agenthttp.ClientConfig{
			BaseURL:     baseURL,
			BackendName: "ollama",
		})
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OllamaClient{
		http:     httpClient,
		registry: registry,
		logger:   logger,
	}
}

// chatRequest is the Ollama /api/chat request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

// chatResponse is the Ollama /api/chat response body (non-streaming).
type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// Complete implements Client.
func (c *OllamaClient) Complete(ctx context.Context, req Request) (*Response, error) {
	cfg, err := c.registry.Get(req.ModelKey)
	if err != nil {
		return nil, err
	}

	body := chatRequest{
		Model:  cfg.Model,
		Stream: false,
		Options: chatOptions{
			Temperature: cfg.Temperature,
			NumCtx:      cfg.MaxTokens,
		},
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	var resp chatResponse
	if err := c.http.Post(ctx, "/api/chat", body, &resp); err != nil {
		var apiErr *agenthttp.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, apiErr.Message)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	content := strings.TrimSpace(resp.Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty completion from %s", ErrInvalidResponse, cfg.Model)
	}

	c.logger.Debug("completion finished",
		"model_key", req.ModelKey,
		"model", resp.Model,
		"messages", len(req.Messages),
		"chars_out", len(content),
	)

	return &Response{Content: content, Model: resp.Model}, nil
}
