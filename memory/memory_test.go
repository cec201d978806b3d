package memory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *KeywordStore {
	t.Helper()
	return NewKeywordStore(KeywordStoreConfig{})
}

func TestSearchRanksByOverlap(t *testing.T) {
	s := newTestStore(t)
	s.Add("write a python sorting function", "def sort(xs): ...", nil)
	s.Add("translate greeting to spanish", "Hola", nil)
	s.Add("debug the python api handler", "fixed the handler", nil)

	got := s.Search("python function to sort", 2)
	if len(got) != 2 {
		t.Fatalf("Search returned %d records, want 2", len(got))
	}
	if !strings.Contains(got[0].Task, "sorting function") {
		t.Errorf("top hit = %q, want the sorting-function record", got[0].Task)
	}
	if !strings.Contains(got[1].Task, "debug the python") {
		t.Errorf("second hit = %q, want the debug record", got[1].Task)
	}
}

func TestSearchSkipsUnrelated(t *testing.T) {
	s := newTestStore(t)
	s.Add("translate greeting to spanish", "Hola", nil)

	if got := s.Search("quarterly revenue forecast", 5); len(got) != 0 {
		t.Errorf("Search returned %d records for unrelated query, want 0", len(got))
	}
	if got := s.Search("", 5); got != nil {
		t.Errorf("Search with empty query = %v, want nil", got)
	}
}

func TestSearchTieKeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	s.Add("summarize report alpha", "done", nil)
	s.Add("summarize report beta", "done", nil)

	got := s.Search("summarize report", 2)
	if len(got) != 2 {
		t.Fatalf("Search returned %d records, want 2", len(got))
	}
	if !strings.Contains(got[0].Task, "alpha") {
		t.Errorf("tie broke to %q, want the older record first", got[0].Task)
	}
}

func TestGetRelevantContextFormatting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetRelevantContext(ctx, "anything", 3)
	if err != nil {
		t.Fatalf("GetRelevantContext error = %v", err)
	}
	if got != "" {
		t.Errorf("empty store context = %q, want empty", got)
	}

	s.Add("plan the launch", "1. build 2. ship", nil)
	got, err = s.GetRelevantContext(ctx, "launch plan", 3)
	if err != nil {
		t.Fatalf("GetRelevantContext error = %v", err)
	}
	if !strings.HasPrefix(got, "Previous conversation 1:") {
		t.Errorf("context = %q, want numbered block prefix", got)
	}
	if !strings.Contains(got, "Task: plan the launch") {
		t.Errorf("context missing task line: %q", got)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")

	s := NewKeywordStore(KeywordStoreConfig{Path: path})
	s.Add("write a haiku about autumn", "leaves fall silently", map[string]string{"model": "gemma3"})

	reloaded := NewKeywordStore(KeywordStoreConfig{Path: path})
	if reloaded.Len() != 1 {
		t.Fatalf("reloaded store has %d records, want 1", reloaded.Len())
	}
	got := reloaded.Search("autumn haiku", 1)
	if len(got) != 1 || got[0].Meta["model"] != "gemma3" {
		t.Errorf("reloaded record = %+v, want original with meta", got)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	s.Add("plan the launch", "ok", nil)
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", s.Len())
	}
}
