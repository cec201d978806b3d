package workflow

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/agentflow/llm"
)

// Step names a pipeline stage.
type Step string

const (
	StepInitialized Step = "initialized"
	StepPlanning    Step = "planning"
	StepResearch    Step = "research"
	StepExecution   Step = "execution"
	StepReview      Step = "review"
	StepCompleted   Step = "completed"
)

// Steps returns the pipeline stages in execution order.
func Steps() []Step {
	return []Step{StepPlanning, StepResearch, StepExecution, StepReview}
}

// State is the per-run record. A State is owned exclusively by the
// Process call that created it and is never shared across tasks. Task is
// immutable once set; each output field is written exactly once by its
// stage.
type State struct {
	RunID           string            `json:"run_id"`
	Task            string            `json:"task"`
	Plan            string            `json:"plan,omitempty"`
	Research        string            `json:"research,omitempty"`
	ExecutionResult string            `json:"execution_result,omitempty"`
	Review          string            `json:"review,omitempty"`
	CurrentStep     Step              `json:"current_step"`
	CompletedSteps  []Step            `json:"completed_steps"`
	Context         map[string]string `json:"context,omitempty"`
	Transcript      []llm.Message     `json:"messages"`
	StartedAt       time.Time         `json:"started_at"`
	Duration        time.Duration     `json:"duration"`
}

// newState initializes a run for the given task.
func newState(task string, taskContext map[string]string) *State {
	return &State{
		RunID:          generateRunID("workflow"),
		Task:           task,
		CurrentStep:    StepInitialized,
		CompletedSteps: []Step{},
		Context:        taskContext,
		Transcript:     []llm.Message{},
		StartedAt:      time.Now(),
	}
}

// Summary renders the four stage outputs as labeled sections.
func (s *State) Summary() string {
	return fmt.Sprintf("**Plan:**\n%s\n\n**Research:**\n%s\n\n**Execution Result:**\n%s\n\n**Review:**\n%s",
		s.Plan, s.Research, s.ExecutionResult, s.Review)
}

// generateRunID creates a unique run ID
func generateRunID(flowID string) string {
	timestamp := time.Now().Format("2006-01-02")
	suffix, err := nanoid.Generate("0123456789abcdef", 8)
	if err != nil {
		// nanoid fails only on alphabet/size misuse or a broken
		// entropy source; fall back to a time-derived suffix.
		suffix = fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return fmt.Sprintf("%s-%s-%s", timestamp, flowID, suffix)
}
