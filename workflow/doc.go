// Package workflow runs tasks through the four-stage agent pipeline:
// planning, research, execution, review.
//
// Core types:
//   - State: Per-run record of stage outputs, progress, and transcript
//   - Engine: Drives a task through the ordered stages
//   - StageError: Error carrying the failing stage and partial state
//
// Stages run strictly in order. Each stage reads only fields already
// populated by earlier stages, so a run is sequential per task; separate
// tasks may run concurrently, each with its own State.
//
// Example usage:
//
//	engine, err := workflow.NewEngine(workflow.EngineConfig{
//	    Planner:    planner,
//	    Researcher: researcher,
//	    Executor:   executor,
//	    Critic:     critic,
//	})
//	state, err := engine.Process(ctx, "add rate limiting to the API", nil)
package workflow
