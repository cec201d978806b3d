package integrationtest

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/randalmurphal/agentflow/agent"
	"github.com/randalmurphal/agentflow/llm"
	"github.com/randalmurphal/agentflow/memory"
	"github.com/randalmurphal/agentflow/router"
	"github.com/randalmurphal/agentflow/transcript"
	"github.com/randalmurphal/agentflow/workflow"
)

// mockLLM answers completions from a fixed per-agent script. The agent is
// identified by its system prompt, the same way a real backend would see
// distinct personas.
type mockLLM struct {
	mu        sync.Mutex
	responses map[string]string
	requests  []llm.Request
}

// mockResponses builds a mock backend with one canned reply per agent.
func mockResponses(planner, researcher, executor, critic string) *mockLLM {
	return &mockLLM{
		responses: map[string]string{
			"Planning Agent": planner,
			"Research Agent": researcher,
			"Executor Agent": executor,
			"Critic Agent":   critic,
		},
	}
}

func (m *mockLLM) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	content := "ok"
	if len(req.Messages) > 0 && req.Messages[0].Role == llm.RoleSystem {
		for marker, reply := range m.responses {
			if strings.Contains(req.Messages[0].Content, marker) {
				content = reply
				break
			}
		}
	}
	return &llm.Response{Model: req.ModelKey, Content: content}, nil
}

// CallCount returns how many completions were requested.
func (m *mockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every completion request seen so far.
func (m *mockLLM) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Request(nil), m.requests...)
}

// testStack is a fully wired engine plus the collaborators tests inspect.
type testStack struct {
	engine      *workflow.Engine
	ledger      *router.Ledger
	memory      *memory.KeywordStore
	transcripts *transcript.FileStore
}

// setupStack wires agents, router, memory, and transcripts around the mock
// backend, rooted at a temp directory.
func setupStack(t *testing.T, client llm.Client) *testStack {
	t.Helper()

	ledger := router.NewLedger(router.LedgerConfig{})
	modelRouter := router.New(router.Config{Ledger: ledger})
	memoryStore := memory.NewKeywordStore(memory.KeywordStoreConfig{})

	transcripts, err := transcript.NewFileStore(transcript.StoreConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	cfg := agent.Config{Router: modelRouter, Client: client, Recall: memoryStore}
	planner, err := agent.NewPlanner(cfg)
	if err != nil {
		t.Fatalf("NewPlanner: %v", err)
	}
	researcher, err := agent.NewResearcher(cfg)
	if err != nil {
		t.Fatalf("NewResearcher: %v", err)
	}
	executor, err := agent.NewExecutor(cfg)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	critic, err := agent.NewCritic(cfg)
	if err != nil {
		t.Fatalf("NewCritic: %v", err)
	}

	engine, err := workflow.NewEngine(workflow.EngineConfig{
		Planner:     planner,
		Researcher:  researcher,
		Executor:    executor,
		Critic:      critic,
		Transcripts: transcripts,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	return &testStack{
		engine:      engine,
		ledger:      ledger,
		memory:      memoryStore,
		transcripts: transcripts,
	}
}
