package transcript

import (
	"errors"
	"testing"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(StoreConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFileStore error = %v", err)
	}
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newStore(t)

	meta := RunMetadata{FlowID: "workflow", Input: map[string]any{"task": "write a haiku"}}
	if err := s.StartRun("run-1", meta); err != nil {
		t.Fatalf("StartRun error = %v", err)
	}

	if err := s.RecordTurn("run-1", Turn{Stage: "planning", Role: "user", Content: "plan it"}); err != nil {
		t.Fatalf("RecordTurn error = %v", err)
	}
	if err := s.RecordTurn("run-1", Turn{Stage: "planning", Role: "assistant", Content: "1. write"}); err != nil {
		t.Fatalf("RecordTurn error = %v", err)
	}

	if err := s.EndRun("run-1", RunStatusCompleted); err != nil {
		t.Fatalf("EndRun error = %v", err)
	}

	got, err := s.Load("run-1")
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if got.Metadata.Status != RunStatusCompleted {
		t.Errorf("status = %v, want completed", got.Metadata.Status)
	}
	if len(got.Turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(got.Turns))
	}
	if got.Turns[0].ID != 1 || got.Turns[1].ID != 2 {
		t.Errorf("turn IDs = %d, %d, want 1, 2", got.Turns[0].ID, got.Turns[1].ID)
	}
	if got.Turns[1].Stage != "planning" || got.Turns[1].Role != "assistant" {
		t.Errorf("turn = %+v, want planning/assistant", got.Turns[1])
	}
	if got.Metadata.TurnCount != 2 {
		t.Errorf("turn count = %d, want 2", got.Metadata.TurnCount)
	}
}

func TestStartRunTwice(t *testing.T) {
	s := newStore(t)
	if err := s.StartRun("dup", RunMetadata{FlowID: "workflow"}); err != nil {
		t.Fatal(err)
	}
	if err := s.StartRun("dup", RunMetadata{FlowID: "workflow"}); !errors.Is(err, ErrRunAlreadyExists) {
		t.Errorf("second StartRun error = %v, want ErrRunAlreadyExists", err)
	}
}

func TestRecordTurnWithoutStart(t *testing.T) {
	s := newStore(t)
	if err := s.RecordTurn("ghost", Turn{Role: "user", Content: "x"}); !errors.Is(err, ErrRunNotStarted) {
		t.Errorf("RecordTurn error = %v, want ErrRunNotStarted", err)
	}
}

func TestEndRunWithError(t *testing.T) {
	s := newStore(t)
	if err := s.StartRun("bad", RunMetadata{FlowID: "workflow"}); err != nil {
		t.Fatal(err)
	}
	if err := s.EndRunWithError("bad", errors.New("stage research failed")); err != nil {
		t.Fatalf("EndRunWithError error = %v", err)
	}

	meta, err := s.LoadMetadata("bad")
	if err != nil {
		t.Fatalf("LoadMetadata error = %v", err)
	}
	if meta.Status != RunStatusFailed {
		t.Errorf("status = %v, want failed", meta.Status)
	}
	if meta.Error != "stage research failed" {
		t.Errorf("error = %q, want recorded message", meta.Error)
	}
}

func TestLoadActiveRunReturnsCopy(t *testing.T) {
	s := newStore(t)
	if err := s.StartRun("live", RunMetadata{FlowID: "workflow"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordTurn("live", Turn{Role: "user", Content: "x"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load("live")
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	got.Turns[0].Content = "mutated"

	again, err := s.Load("live")
	if err != nil {
		t.Fatal(err)
	}
	if again.Turns[0].Content != "x" {
		t.Error("Load of active run must return a copy")
	}
}

func TestListFiltersAndLimits(t *testing.T) {
	s := newStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.StartRun(id, RunMetadata{FlowID: "workflow"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.EndRun("a", RunStatusCompleted); err != nil {
		t.Fatal(err)
	}
	if err := s.EndRunWithError("b", errors.New("boom")); err != nil {
		t.Fatal(err)
	}
	if err := s.EndRun("c", RunStatusCompleted); err != nil {
		t.Fatal(err)
	}

	completed, err := s.List(ListFilter{Status: RunStatusCompleted})
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("completed runs = %d, want 2", len(completed))
	}

	limited, err := s.List(ListFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limited runs = %d, want 1", len(limited))
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	if err := s.StartRun("gone", RunMetadata{FlowID: "workflow"}); err != nil {
		t.Fatal(err)
	}
	if err := s.EndRun("gone", RunStatusCompleted); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, err := s.Load("gone"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load after Delete error = %v, want ErrRunNotFound", err)
	}
}
