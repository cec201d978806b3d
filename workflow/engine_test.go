package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/randalmurphal/agentflow/llm"
	"github.com/randalmurphal/agentflow/notify"
	"github.com/randalmurphal/agentflow/router"
	"github.com/randalmurphal/agentflow/transcript"
)

// scriptedAgent replies with a fixed result and records the inputs it saw.
type scriptedAgent struct {
	name   string
	result string
	err    error
	inputs []string
	ovs    []*router.Overrides
}

func (a *scriptedAgent) Process(_ context.Context, input string, ov *router.Overrides) (string, error) {
	a.inputs = append(a.inputs, input)
	a.ovs = append(a.ovs, ov)
	if a.err != nil {
		return "", a.err
	}
	return a.result, nil
}

type testAgents struct {
	planner, researcher, executor, critic *scriptedAgent
}

func newTestEngine(t *testing.T, mgr transcript.Manager) (*Engine, *testAgents) {
	t.Helper()
	agents := &testAgents{
		planner:    &scriptedAgent{name: "planner", result: "the plan"},
		researcher: &scriptedAgent{name: "researcher", result: "the research"},
		executor:   &scriptedAgent{name: "executor", result: "the output"},
		critic:     &scriptedAgent{name: "critic", result: "the review"},
	}
	e, err := NewEngine(EngineConfig{
		Planner:     agents.planner,
		Researcher:  agents.researcher,
		Executor:    agents.executor,
		Critic:      agents.critic,
		Transcripts: mgr,
	})
	if err != nil {
		t.Fatalf("NewEngine error = %v", err)
	}
	return e, agents
}

func TestNewEngineRequiresAllAgents(t *testing.T) {
	a := &scriptedAgent{}
	if _, err := NewEngine(EngineConfig{Planner: a, Researcher: a, Executor: a}); err == nil {
		t.Error("NewEngine without critic should fail")
	}
}

func TestProcessRunsStagesInOrder(t *testing.T) {
	e, agents := newTestEngine(t, nil)

	st, err := e.Process(context.Background(), "Write a sort function", nil)
	if err != nil {
		t.Fatalf("Process error = %v", err)
	}

	wantSteps := []Step{StepPlanning, StepResearch, StepExecution, StepReview}
	if len(st.CompletedSteps) != len(wantSteps) {
		t.Fatalf("CompletedSteps = %v, want %v", st.CompletedSteps, wantSteps)
	}
	for i, want := range wantSteps {
		if st.CompletedSteps[i] != want {
			t.Errorf("CompletedSteps[%d] = %v, want %v", i, st.CompletedSteps[i], want)
		}
	}

	if st.Plan != "the plan" || st.Research != "the research" ||
		st.ExecutionResult != "the output" || st.Review != "the review" {
		t.Errorf("stage outputs not all assigned: %+v", st)
	}
	if st.CurrentStep != StepCompleted {
		t.Errorf("CurrentStep = %v, want %v", st.CurrentStep, StepCompleted)
	}
	if st.Task != "Write a sort function" {
		t.Errorf("Task = %q, want input task", st.Task)
	}
	if st.Duration <= 0 {
		t.Error("Duration not set")
	}

	// Each downstream prompt is built from upstream output.
	if !strings.Contains(agents.researcher.inputs[0], "the plan") {
		t.Errorf("research prompt missing plan: %q", agents.researcher.inputs[0])
	}
	if !strings.Contains(agents.executor.inputs[0], "the research") {
		t.Errorf("execution prompt missing research: %q", agents.executor.inputs[0])
	}
	if !strings.Contains(agents.critic.inputs[0], "the output") ||
		!strings.Contains(agents.critic.inputs[0], "Requirements:\nWrite a sort function") {
		t.Errorf("review prompt missing output or requirements: %q", agents.critic.inputs[0])
	}
}

func TestProcessRejectsEmptyTask(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	for _, task := range []string{"", "   ", "\n\t"} {
		if _, err := e.Process(context.Background(), task, nil); !errors.Is(err, ErrEmptyTask) {
			t.Errorf("Process(%q) error = %v, want ErrEmptyTask", task, err)
		}
	}
}

func TestStageFailureNamesStageAndKeepsPartialState(t *testing.T) {
	e, agents := newTestEngine(t, nil)
	agents.researcher.err = errors.New("model unavailable")

	st, err := e.Process(context.Background(), "some task", nil)
	if st != nil {
		t.Error("failed Process should not return a state")
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("error = %T, want *StageError", err)
	}
	if stageErr.Stage != StepResearch {
		t.Errorf("failing stage = %v, want %v", stageErr.Stage, StepResearch)
	}
	if stageErr.State == nil || stageErr.State.Plan != "the plan" {
		t.Error("partial state should preserve the completed planning output")
	}
	if stageErr.State.Research != "" {
		t.Error("failed stage must not write its output field")
	}
	if got := stageErr.State.CompletedSteps; len(got) != 1 || got[0] != StepPlanning {
		t.Errorf("CompletedSteps = %v, want [planning]", got)
	}
	if len(agents.executor.inputs) != 0 || len(agents.critic.inputs) != 0 {
		t.Error("downstream stages must not run after a failure")
	}
}

func TestCancelledContextStopsPipeline(t *testing.T) {
	e, agents := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Process(ctx, "some task", nil)
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("error = %T, want *StageError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want wrapped context.Canceled", err)
	}
	if len(agents.planner.inputs) != 0 {
		t.Error("no stage should run on a cancelled context")
	}
}

func TestTranscriptTwoEntriesPerStage(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	st, err := e.Process(context.Background(), "some task", nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(st.Transcript) != 8 {
		t.Fatalf("transcript has %d messages, want 8", len(st.Transcript))
	}
	for i, msg := range st.Transcript {
		wantRole := llm.RoleUser
		if i%2 == 1 {
			wantRole = llm.RoleAssistant
		}
		if msg.Role != wantRole {
			t.Errorf("transcript[%d] role = %v, want %v", i, msg.Role, wantRole)
		}
	}
	if st.Transcript[1].Content != "the plan" {
		t.Errorf("transcript[1] = %q, want planning result", st.Transcript[1].Content)
	}
}

func TestExecutionPinsCodingFromTask(t *testing.T) {
	e, agents := newTestEngine(t, nil)

	if _, err := e.Process(context.Background(), "write code for fizzbuzz", nil); err != nil {
		t.Fatal(err)
	}
	ov := agents.executor.ovs[0]
	if ov == nil || ov.RequiresCoding == nil || !*ov.RequiresCoding {
		t.Error("execution stage should pin coding=true for a task mentioning code")
	}

	if _, err := e.Process(context.Background(), "write a poem", nil); err != nil {
		t.Fatal(err)
	}
	ov = agents.executor.ovs[1]
	if ov == nil || ov.RequiresCoding == nil || *ov.RequiresCoding {
		t.Error("execution stage should pin coding=false for a non-coding task")
	}

	// The other stages pass no overrides.
	if agents.planner.ovs[0] != nil || agents.critic.ovs[0] != nil {
		t.Error("planning and review stages should not override routing")
	}
}

func TestRunIDsAreUnique(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		st, err := e.Process(context.Background(), fmt.Sprintf("task %d", i), nil)
		if err != nil {
			t.Fatal(err)
		}
		if st.RunID == "" {
			t.Fatal("empty RunID")
		}
		if seen[st.RunID] {
			t.Fatalf("duplicate RunID %q", st.RunID)
		}
		seen[st.RunID] = true
	}
}

func TestRunRecordedToTranscriptStore(t *testing.T) {
	mgr, err := transcript.NewFileStore(transcript.StoreConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := newTestEngine(t, mgr)

	st, err := e.Process(context.Background(), "some task", map[string]string{"tenant": "a"})
	if err != nil {
		t.Fatal(err)
	}

	rec, err := mgr.Load(st.RunID)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", st.RunID, err)
	}
	if rec.Metadata.Status != transcript.RunStatusCompleted {
		t.Errorf("run status = %v, want completed", rec.Metadata.Status)
	}
	if len(rec.Turns) != 8 {
		t.Errorf("recorded %d turns, want 8", len(rec.Turns))
	}
	if rec.Turns[0].Stage != string(StepPlanning) {
		t.Errorf("first turn stage = %q, want planning", rec.Turns[0].Stage)
	}
}

func TestFailedRunRecordedAsFailed(t *testing.T) {
	mgr, err := transcript.NewFileStore(transcript.StoreConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	e, agents := newTestEngine(t, mgr)
	agents.executor.err = errors.New("boom")

	_, perr := e.Process(context.Background(), "some task", nil)
	var stageErr *StageError
	if !errors.As(perr, &stageErr) {
		t.Fatalf("error = %T, want *StageError", perr)
	}

	meta, err := mgr.LoadMetadata(stageErr.State.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Status != transcript.RunStatusFailed {
		t.Errorf("run status = %v, want failed", meta.Status)
	}
	if !strings.Contains(meta.Error, "execution") {
		t.Errorf("recorded error = %q, want stage name", meta.Error)
	}
}

func TestSummarySections(t *testing.T) {
	st := &State{Plan: "p", Research: "r", ExecutionResult: "x", Review: "v"}
	got := st.Summary()
	for _, want := range []string{"**Plan:**\np", "**Research:**\nr", "**Execution Result:**\nx", "**Review:**\nv"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary missing %q:\n%s", want, got)
		}
	}
}

// recordingNotifier captures delivered events.
type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, event notify.Event) error {
	n.events = append(n.events, event)
	return nil
}

func TestProcessNotifiesRunLifecycle(t *testing.T) {
	agents := &testAgents{
		planner:    &scriptedAgent{result: "p"},
		researcher: &scriptedAgent{result: "r"},
		executor:   &scriptedAgent{result: "x"},
		critic:     &scriptedAgent{result: "v"},
	}
	notifier := &recordingNotifier{}
	e, err := NewEngine(EngineConfig{
		Planner:    agents.planner,
		Researcher: agents.researcher,
		Executor:   agents.executor,
		Critic:     agents.critic,
		Notifier:   notifier,
	})
	if err != nil {
		t.Fatal(err)
	}

	st, err := e.Process(context.Background(), "some task", nil)
	if err != nil {
		t.Fatalf("Process error = %v", err)
	}

	// Run start, started+completed per stage, run completion.
	want := []notify.EventType{
		notify.EventRunStarted,
		notify.EventStageStarted, notify.EventStageCompleted,
		notify.EventStageStarted, notify.EventStageCompleted,
		notify.EventStageStarted, notify.EventStageCompleted,
		notify.EventStageStarted, notify.EventStageCompleted,
		notify.EventRunCompleted,
	}
	if len(notifier.events) != len(want) {
		t.Fatalf("events = %d, want %d", len(notifier.events), len(want))
	}
	for i, ev := range notifier.events {
		if ev.Type != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, ev.Type, want[i])
		}
		if ev.RunID != st.RunID {
			t.Errorf("event run id = %q, want %q", ev.RunID, st.RunID)
		}
		if ev.Timestamp.IsZero() {
			t.Error("event timestamp not set")
		}
	}
	for i, step := range Steps() {
		if got := notifier.events[1+2*i].Stage; got != string(step) {
			t.Errorf("stage event %d = %q, want %q", i, got, step)
		}
	}
}

func TestProcessNotifiesFailure(t *testing.T) {
	agents := &testAgents{
		planner:    &scriptedAgent{result: "p"},
		researcher: &scriptedAgent{err: errors.New("boom")},
		executor:   &scriptedAgent{result: "x"},
		critic:     &scriptedAgent{result: "v"},
	}
	notifier := &recordingNotifier{}
	e, err := NewEngine(EngineConfig{
		Planner:    agents.planner,
		Researcher: agents.researcher,
		Executor:   agents.executor,
		Critic:     agents.critic,
		Notifier:   notifier,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Process(context.Background(), "some task", nil); err == nil {
		t.Fatal("Process should fail")
	}

	if len(notifier.events) < 2 {
		t.Fatalf("events = %d, want at least stage and run failures", len(notifier.events))
	}
	stageEv := notifier.events[len(notifier.events)-2]
	if stageEv.Type != notify.EventStageFailed {
		t.Errorf("penultimate event = %v, want %v", stageEv.Type, notify.EventStageFailed)
	}
	last := notifier.events[len(notifier.events)-1]
	if last.Type != notify.EventRunFailed {
		t.Errorf("last event = %v, want %v", last.Type, notify.EventRunFailed)
	}
	for _, ev := range []notify.Event{stageEv, last} {
		if ev.Stage != string(StepResearch) {
			t.Errorf("event stage = %q, want %q", ev.Stage, StepResearch)
		}
		if ev.Severity != notify.SeverityError {
			t.Errorf("event severity = %q, want %q", ev.Severity, notify.SeverityError)
		}
	}
}
