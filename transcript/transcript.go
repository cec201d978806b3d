package transcript

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Transcript errors
var (
	ErrRunNotFound      = errors.New("run not found")
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrRunNotStarted    = errors.New("run not started")
)

// RunStatus indicates the status of a run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCanceled  RunStatus = "canceled"
)

// Transcript represents a complete run record
type Transcript struct {
	RunID    string `json:"runId"`
	Metadata Meta   `json:"metadata"`
	Turns    []Turn `json:"turns"`
}

// Meta contains run metadata
type Meta struct {
	RunID     string         `json:"runId,omitempty"`
	FlowID    string         `json:"flowId"`
	Input     map[string]any `json:"input,omitempty"`
	StartedAt time.Time      `json:"startedAt"`
	EndedAt   time.Time      `json:"endedAt,omitempty"`
	Status    RunStatus      `json:"status"`
	TurnCount int            `json:"turnCount"`
	Error     string         `json:"error,omitempty"`
}

// Turn represents one recorded message. Stage names the pipeline stage
// that produced it.
type Turn struct {
	ID        int       `json:"id"`
	Stage     string    `json:"stage,omitempty"`
	Role      string    `json:"role"` // system, user, assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// RunMetadata is input for starting a new run
type RunMetadata struct {
	FlowID string
	Input  map[string]any
}

// save writes the full transcript under baseDir/runs/<runID>/.
func (t *Transcript) save(baseDir string) error {
	runDir := filepath.Join(baseDir, "runs", t.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(runDir, "transcript.json"), data, 0644)
}

// load reads a persisted transcript from baseDir/runs/<runID>/.
func load(baseDir, runID string) (*Transcript, error) {
	path := filepath.Join(baseDir, "runs", runID, "transcript.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
