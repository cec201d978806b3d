package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/agentflow/llm"
	"github.com/randalmurphal/agentflow/notify"
	"github.com/randalmurphal/agentflow/prompt"
	"github.com/randalmurphal/agentflow/router"
	"github.com/randalmurphal/agentflow/transcript"
)

// StageAgent is the capability each pipeline stage invokes. The agent
// performs its own model selection and invocation; the engine only
// supplies the synthesized prompt and optional routing overrides.
type StageAgent interface {
	Process(ctx context.Context, input string, ov *router.Overrides) (string, error)
}

// EngineConfig configures an Engine. The four agents are required.
type EngineConfig struct {
	Planner    StageAgent
	Researcher StageAgent
	Executor   StageAgent
	Critic     StageAgent

	// Transcripts, when set, records each run. Recording failures are
	// logged and never abort a run.
	Transcripts transcript.Manager

	// Notifier, when set, receives run lifecycle events. Delivery is best
	// effort; notifier errors are logged and never abort a run.
	Notifier notify.Notifier

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// stage is one row of the ordered pipeline table.
type stage struct {
	step   Step
	agent  StageAgent
	build  func(s *State) (string, *router.Overrides)
	assign func(s *State, result string)
}

// Engine drives tasks through the pipeline. It holds no per-run state;
// every Process call owns its State exclusively, so one Engine may serve
// concurrent tasks.
type Engine struct {
	stages      []stage
	transcripts transcript.Manager
	notifier    notify.Notifier
	logger      *slog.Logger
}

// NewEngine creates an Engine from the four stage agents.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Planner == nil || cfg.Researcher == nil || cfg.Executor == nil || cfg.Critic == nil {
		return nil, errors.New("workflow: all four stage agents are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &Engine{
		transcripts: cfg.Transcripts,
		notifier:    cfg.Notifier,
		logger:      cfg.Logger,
	}
	e.stages = []stage{
		{
			step:  StepPlanning,
			agent: cfg.Planner,
			build: func(s *State) (string, *router.Overrides) {
				return prompt.NewBuilder().
					Add("Create a detailed plan for the following task:").
					AddSection("Task", s.Task).
					Add("Provide a step-by-step plan that breaks down this task into actionable steps.\nInclude any dependencies, prerequisites, or considerations.").
					Build(), nil
			},
			assign: func(s *State, result string) { s.Plan = result },
		},
		{
			step:  StepResearch,
			agent: cfg.Researcher,
			build: func(s *State) (string, *router.Overrides) {
				return prompt.NewBuilder().
					Add("Based on the task and plan, identify what information or research is needed:").
					AddSection("Task", s.Task).
					AddSection("Plan", s.Plan).
					Add("What information should be gathered before execution?").
					Build(), nil
			},
			assign: func(s *State, result string) { s.Research = result },
		},
		{
			step:  StepExecution,
			agent: cfg.Executor,
			build: func(s *State) (string, *router.Overrides) {
				p := prompt.NewBuilder().
					Add("Execute the following task:").
					AddSection("Task", s.Task).
					AddSection("Plan", s.Plan).
					AddSection("Research", s.Research).
					Add("Provide the complete output or result.").
					Build()
				// Pin the coding characteristic from the task itself; the
				// synthesized prompt carries planner wording the classifier
				// would misread.
				requiresCoding := strings.Contains(strings.ToLower(s.Task), "code")
				return p, &router.Overrides{RequiresCoding: &requiresCoding}
			},
			assign: func(s *State, result string) { s.ExecutionResult = result },
		},
		{
			step:  StepReview,
			agent: cfg.Critic,
			build: func(s *State) (string, *router.Overrides) {
				return prompt.NewBuilder().
					Add("Review the following output against the requirements:").
					AddSection("Output", s.ExecutionResult).
					AddSection("Requirements", s.Task).
					Add("Provide a comprehensive review including:\n1. Quality assessment\n2. Requirement compliance check\n3. Identified issues\n4. Suggestions for improvement").
					Build(), nil
			},
			assign: func(s *State, result string) { s.Review = result },
		},
	}
	return e, nil
}

// Process runs the task through all four stages and returns the final
// state. On failure it returns a *StageError naming the failing stage and
// carrying the partial state; completed stage outputs are preserved there
// for diagnostics.
func (e *Engine) Process(ctx context.Context, task string, taskContext map[string]string) (*State, error) {
	if strings.TrimSpace(task) == "" {
		return nil, ErrEmptyTask
	}

	st := newState(task, taskContext)
	recording := e.startRecording(st, taskContext)

	e.logger.Info("workflow started", "run_id", st.RunID, "task", router.Snippet(task, 80))
	e.notifyEvent(ctx, notify.Event{
		Type:     notify.EventRunStarted,
		RunID:    st.RunID,
		Message:  "Workflow started: " + router.Snippet(task, 80),
		Severity: notify.SeverityInfo,
	})

	for _, sg := range e.stages {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(st, sg.step, err, recording)
		}

		e.notifyEvent(ctx, notify.Event{
			Type:     notify.EventStageStarted,
			RunID:    st.RunID,
			Stage:    string(sg.step),
			Message:  "Stage " + string(sg.step) + " started",
			Severity: notify.SeverityInfo,
		})

		input, ov := sg.build(st)
		result, err := sg.agent.Process(ctx, input, ov)
		if err != nil {
			return nil, e.fail(st, sg.step, err, recording)
		}

		sg.assign(st, result)
		st.CurrentStep = sg.step
		st.CompletedSteps = append(st.CompletedSteps, sg.step)
		st.Transcript = append(st.Transcript,
			llm.Message{Role: llm.RoleUser, Content: input},
			llm.Message{Role: llm.RoleAssistant, Content: result},
		)

		if recording {
			e.recordTurn(st.RunID, sg.step, string(llm.RoleUser), input)
			e.recordTurn(st.RunID, sg.step, string(llm.RoleAssistant), result)
		}

		e.logger.Debug("stage completed", "run_id", st.RunID, "stage", sg.step)
		e.notifyEvent(ctx, notify.Event{
			Type:     notify.EventStageCompleted,
			RunID:    st.RunID,
			Stage:    string(sg.step),
			Message:  "Stage " + string(sg.step) + " completed",
			Severity: notify.SeverityInfo,
		})
	}

	st.CurrentStep = StepCompleted
	st.Duration = time.Since(st.StartedAt)

	if recording {
		if err := e.transcripts.EndRun(st.RunID, transcript.RunStatusCompleted); err != nil {
			e.logger.Warn("could not close run transcript", "run_id", st.RunID, "error", err)
		}
	}

	e.logger.Info("workflow completed", "run_id", st.RunID, "duration", st.Duration)
	e.notifyEvent(ctx, notify.Event{
		Type:     notify.EventRunCompleted,
		RunID:    st.RunID,
		Message:  "Workflow completed",
		Severity: notify.SeverityInfo,
		Metadata: map[string]any{"duration": st.Duration.String()},
	})
	return st, nil
}

// fail closes out a run that cannot continue.
func (e *Engine) fail(st *State, step Step, cause error, recording bool) error {
	st.Duration = time.Since(st.StartedAt)
	stageErr := &StageError{Stage: step, State: st, Err: cause}

	if recording {
		var recErr error
		if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
			recErr = e.transcripts.EndRun(st.RunID, transcript.RunStatusCanceled)
		} else {
			recErr = e.transcripts.EndRunWithError(st.RunID, stageErr)
		}
		if recErr != nil {
			e.logger.Warn("could not close run transcript", "run_id", st.RunID, "error", recErr)
		}
	}

	e.logger.Error("workflow failed", "run_id", st.RunID, "stage", step, "error", cause)
	// Use a fresh context: the run's context may already be canceled.
	e.notifyEvent(context.Background(), notify.Event{
		Type:     notify.EventStageFailed,
		RunID:    st.RunID,
		Stage:    string(step),
		Message:  "Stage " + string(step) + " failed",
		Severity: notify.SeverityError,
	})
	e.notifyEvent(context.Background(), notify.Event{
		Type:     notify.EventRunFailed,
		RunID:    st.RunID,
		Stage:    string(step),
		Message:  "Workflow failed at stage " + string(step),
		Severity: notify.SeverityError,
	})
	return stageErr
}

// notifyEvent stamps and delivers one event, logging failures.
func (e *Engine) notifyEvent(ctx context.Context, event notify.Event) {
	if e.notifier == nil {
		return
	}
	event.Timestamp = time.Now()
	if err := e.notifier.Notify(ctx, event); err != nil {
		e.logger.Warn("notifier failed", "run_id", event.RunID, "error", err)
	}
}

// startRecording opens a transcript run if a manager is configured.
func (e *Engine) startRecording(st *State, taskContext map[string]string) bool {
	if e.transcripts == nil {
		return false
	}

	input := map[string]any{"task": st.Task}
	if len(taskContext) > 0 {
		input["context"] = taskContext
	}
	err := e.transcripts.StartRun(st.RunID, transcript.RunMetadata{
		FlowID: "workflow",
		Input:  input,
	})
	if err != nil {
		e.logger.Warn("could not start run transcript", "run_id", st.RunID, "error", err)
		return false
	}
	return true
}

// recordTurn appends one turn, logging failures.
func (e *Engine) recordTurn(runID string, step Step, role, content string) {
	err := e.transcripts.RecordTurn(runID, transcript.Turn{
		Stage:   string(step),
		Role:    role,
		Content: content,
	})
	if err != nil {
		e.logger.Warn("could not record transcript turn", "run_id", runID, "error", err)
	}
}
