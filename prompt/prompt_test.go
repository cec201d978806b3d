package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmbeddedPrompts(t *testing.T) {
	loader := NewLoader(t.TempDir())

	tests := []struct {
		name string
		want string
	}{
		{"planner", "Planning Agent"},
		{"researcher", "Research Agent"},
		{"executor", "Executor Agent"},
		{"critic", "Critic Agent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loader.Load(tt.name)
			if err != nil {
				t.Fatalf("Load(%q) error = %v", tt.name, err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Load(%q) missing %q in:\n%s", tt.name, tt.want, got)
			}
		})
	}
}

func TestLoadMissingPrompt(t *testing.T) {
	loader := NewLoader(t.TempDir())
	if _, err := loader.Load("no-such-prompt"); err == nil {
		t.Error("Load of missing prompt should fail")
	}
	if loader.Exists("no-such-prompt") {
		t.Error("Exists(no-such-prompt) = true, want false")
	}
}

func TestProjectPromptOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	promptDir := filepath.Join(dir, ".agentflow", "prompts")
	if err := os.MkdirAll(promptDir, 0o755); err != nil {
		t.Fatal(err)
	}
	custom := "You are a custom planner."
	if err := os.WriteFile(filepath.Join(promptDir, "planner.txt"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir)
	got, err := loader.Load("planner")
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if got != custom {
		t.Errorf("Load(planner) = %q, want project override %q", got, custom)
	}
}

func TestLoadWithVars(t *testing.T) {
	dir := t.TempDir()
	promptDir := filepath.Join(dir, "prompts")
	if err := os.MkdirAll(promptDir, 0o755); err != nil {
		t.Fatal(err)
	}
	tmpl := "Task: {{.task}}\nMode: {{upper .mode}}"
	if err := os.WriteFile(filepath.Join(promptDir, "stage.txt"), []byte(tmpl), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir)
	got, err := loader.LoadWithVars("stage", map[string]any{
		"task": "summarize report",
		"mode": "fast",
	})
	if err != nil {
		t.Fatalf("LoadWithVars error = %v", err)
	}
	want := "Task: summarize report\nMode: FAST"
	if got != want {
		t.Errorf("LoadWithVars = %q, want %q", got, want)
	}
}

func TestList(t *testing.T) {
	loader := NewLoader(t.TempDir())
	names, err := loader.List()
	if err != nil {
		t.Fatalf("List error = %v", err)
	}

	found := make(map[string]bool)
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"planner", "researcher", "executor", "critic"} {
		if !found[want] {
			t.Errorf("List missing %q, got %v", want, names)
		}
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	got := b.Add("Execute the following task:").
		AddSection("Task", "write a haiku").
		AddList("Requirements", []string{"three lines", "seasonal word"}).
		Build()

	want := "Execute the following task:\n\n" +
		"Task:\nwrite a haiku\n\n" +
		"Requirements:\n- three lines\n- seasonal word"
	if got != want {
		t.Errorf("Build = %q, want %q", got, want)
	}

	b.Clear()
	if b.Build() != "" {
		t.Errorf("Build after Clear = %q, want empty", b.Build())
	}
}
