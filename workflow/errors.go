package workflow

import (
	"errors"
	"fmt"
)

// ErrEmptyTask indicates Process was called with an empty or
// whitespace-only task. Rejected before any run state is created.
var ErrEmptyTask = errors.New("workflow: task cannot be empty")

// StageError reports which stage failed and carries the partial state so
// callers can inspect outputs from the stages that did complete. The
// partial state is diagnostic only; it is never returned as a success
// value.
type StageError struct {
	Stage Step
	State *State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("workflow: stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
