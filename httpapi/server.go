package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/randalmurphal/agentflow/feedback"
	"github.com/randalmurphal/agentflow/llm"
	"github.com/randalmurphal/agentflow/router"
	"github.com/randalmurphal/agentflow/workflow"
)

// Service identity reported by the health endpoint.
const (
	ServiceName    = "agentflow"
	ServiceVersion = "1.0.0"

	// SupervisorModel is the pseudo-model that returns the full
	// four-section workflow summary instead of just the execution result.
	SupervisorModel = "multi-agent-supervisor"
)

// Engine runs a task through the agent pipeline. *workflow.Engine
// satisfies this.
type Engine interface {
	Process(ctx context.Context, task string, taskContext map[string]string) (*workflow.State, error)
}

// ServerConfig configures a Server.
type ServerConfig struct {
	// Engine processes chat completion tasks. Required.
	Engine Engine

	// Feedback backs the /v1/feedback endpoints. Required.
	Feedback *feedback.Store

	// Registry lists backend models for /v1/models. Optional.
	Registry *llm.Registry

	// Ledger backs /v1/routing/history. Optional.
	Ledger *router.Ledger

	// APIKeyHash, when non-empty, requires clients to present the
	// matching API key (sha256 hex of the accepted key).
	APIKeyHash string

	// JWTSecret, when non-empty, accepts signed bearer tokens as an
	// alternative to the API key.
	JWTSecret []byte

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the HTTP boundary of the pipeline.
type Server struct {
	engine     Engine
	feedback   *feedback.Store
	registry   *llm.Registry
	ledger     *router.Ledger
	apiKeyHash string
	jwtSecret  []byte
	logger     *slog.Logger
	handler    http.Handler
}

// NewServer creates a Server and builds its route table.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("httpapi: engine is required")
	}
	if cfg.Feedback == nil {
		return nil, errors.New("httpapi: feedback store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		engine:     cfg.Engine,
		feedback:   cfg.Feedback,
		registry:   cfg.Registry,
		ledger:     cfg.Ledger,
		apiKeyHash: cfg.APIKeyHash,
		jwtSecret:  cfg.JWTSecret,
		logger:     cfg.Logger,
	}

	r := mux.NewRouter()

	// Health check stays open even when auth is enabled.
	r.HandleFunc("/", s.handleHealth).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/models", s.handleListModels).Methods("GET")
	api.HandleFunc("/chat/completions", s.handleChatCompletions).Methods("POST")
	api.HandleFunc("/feedback", s.handleFeedback).Methods("POST")
	api.HandleFunc("/feedback/summary", s.handleFeedbackSummary).Methods("GET")
	api.HandleFunc("/routing/history", s.handleRoutingHistory).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	s.handler = s.loggingMiddleware(c.Handler(r))
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("could not write response", "error", err)
	}
}

// writeError writes a detail-keyed error body.
func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}
