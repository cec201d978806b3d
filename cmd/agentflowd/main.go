// Package main is the entry point for the agentflow server.
//
// agentflowd exposes the multi-agent workflow pipeline behind an
// OpenAI-compatible HTTP API. Configuration layers, lowest to highest
// precedence: built-in defaults, ~/.config/agentflow/config.yaml,
// ./.agentflow.yaml, AGENTFLOW_* environment variables, flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/randalmurphal/agentflow/agent"
	"github.com/randalmurphal/agentflow/config"
	"github.com/randalmurphal/agentflow/feedback"
	"github.com/randalmurphal/agentflow/httpapi"
	"github.com/randalmurphal/agentflow/llm"
	"github.com/randalmurphal/agentflow/memory"
	"github.com/randalmurphal/agentflow/notify"
	"github.com/randalmurphal/agentflow/prompt"
	"github.com/randalmurphal/agentflow/router"
	"github.com/randalmurphal/agentflow/transcript"
	"github.com/randalmurphal/agentflow/workflow"
)

func main() {
	var (
		port       = flag.Int("port", 0, "HTTP listen port (overrides config)")
		baseURL    = flag.String("base-url", "", "Ollama-compatible backend URL (overrides config)")
		projectDir = flag.String("project-dir", ".", "directory searched for .agentflow.yaml and prompt overrides")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*port, *baseURL, *projectDir, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(portFlag int, baseURLFlag, projectDir string, logger *slog.Logger) error {
	flags := map[string]string{
		"base_url": baseURLFlag,
	}
	if portFlag > 0 {
		flags["port"] = strconv.Itoa(portFlag)
	}
	resolved := config.NewSettingsResolver(projectDir).ResolveWithFlags(flags)
	settings, err := config.SettingsFrom(resolved)
	if err != nil {
		return err
	}

	registry := llm.NewRegistry(nil)
	client := llm.NewOllamaClient(llm.OllamaConfig{
		BaseURL:  settings.BaseURL,
		Registry: registry,
		Logger:   logger,
	})

	ledger := router.NewLedger(router.LedgerConfig{Capacity: settings.LedgerCapacity})
	modelRouter := router.New(router.Config{
		Known:  registry,
		Ledger: ledger,
		Logger: logger,
	})

	feedbackStore := feedback.New(feedback.Config{
		Path:   settings.FeedbackFile,
		Logger: logger,
	})
	memoryStore := memory.NewKeywordStore(memory.KeywordStoreConfig{
		Path:   settings.MemoryFile,
		Logger: logger,
	})
	prompts := prompt.NewLoader(projectDir)

	agentCfg := agent.Config{
		Router:  modelRouter,
		Client:  client,
		Recall:  memoryStore,
		Prompts: prompts,
		Logger:  logger,
	}
	planner, err := agent.NewPlanner(agentCfg)
	if err != nil {
		return err
	}
	researcher, err := agent.NewResearcher(agentCfg)
	if err != nil {
		return err
	}
	executor, err := agent.NewExecutor(agentCfg)
	if err != nil {
		return err
	}
	critic, err := agent.NewCritic(agentCfg)
	if err != nil {
		return err
	}

	transcripts, err := transcript.NewFileStore(transcript.StoreConfig{BaseDir: settings.TranscriptDir})
	if err != nil {
		return fmt.Errorf("transcript store: %w", err)
	}

	engine, err := workflow.NewEngine(workflow.EngineConfig{
		Planner:     planner,
		Researcher:  researcher,
		Executor:    executor,
		Critic:      critic,
		Transcripts: transcripts,
		Notifier:    buildNotifier(settings, logger),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(httpapi.ServerConfig{
		Engine:     &memorizingEngine{engine: engine, memory: memoryStore},
		Feedback:   feedbackStore,
		Registry:   registry,
		Ledger:     ledger,
		APIKeyHash: settings.APIKeyHash,
		JWTSecret:  []byte(settings.JWTSecret),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", settings.Port),
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // workflow runs hold the connection open
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("agentflow server starting",
			"port", settings.Port,
			"base_url", settings.BaseURL,
			"base_url_source", resolved.Source("base_url"))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// buildNotifier assembles the configured notification sinks. Returns nil
// when none are configured.
func buildNotifier(settings *config.Settings, logger *slog.Logger) notify.Notifier {
	var sinks []notify.Notifier
	if settings.SlackWebhook != "" {
		sinks = append(sinks, notify.NewSlackNotifier(settings.SlackWebhook))
	}
	if settings.NotifyWebhook != "" {
		sinks = append(sinks, notify.NewWebhookNotifier(settings.NotifyWebhook, nil))
	}
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		multi := notify.NewMultiNotifier(sinks...)
		multi.Logger = logger
		return multi
	}
}

// memorizingEngine records completed runs into conversation memory so
// later tasks can recall them.
type memorizingEngine struct {
	engine *workflow.Engine
	memory *memory.KeywordStore
}

func (m *memorizingEngine) Process(ctx context.Context, task string, taskContext map[string]string) (*workflow.State, error) {
	state, err := m.engine.Process(ctx, task, taskContext)
	if err != nil {
		return nil, err
	}
	m.memory.Add(task, state.ExecutionResult, map[string]string{"run_id": state.RunID})
	return state, nil
}
