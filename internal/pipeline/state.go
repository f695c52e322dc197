// Package pipeline contains the offline data stages: harvest,
// normalise, merge, validate, precompute, and audit. Each stage records
// its outcome in a state file so interrupted runs resume where they
// stopped.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StateFileName is the conventional name of the pipeline state file.
const StateFileName = "pipeline-state.json"

// StageStatus records one completed stage run.
type StageStatus struct {
	CompletedAt time.Time      `json:"completedAt"`
	Counts      map[string]int `json:"counts,omitempty"`
}

// State is the persisted progress of a pipeline run.
type State struct {
	Stages map[string]StageStatus `json:"stages"`
}

// LoadState reads the state file; a missing file is a fresh run.
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return State{Stages: make(map[string]StageStatus)}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read pipeline state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decode pipeline state: %w", err)
	}
	if state.Stages == nil {
		state.Stages = make(map[string]StageStatus)
	}
	return state, nil
}

// Save writes the state file.
func (s State) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pipeline state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pipeline state: %w", err)
	}
	return nil
}

// Complete marks a stage done with its counters.
func (s State) Complete(stage string, counts map[string]int) State {
	s.Stages[stage] = StageStatus{CompletedAt: time.Now(), Counts: counts}
	return s
}

// Done reports whether a stage already completed.
func (s State) Done(stage string) bool {
	_, ok := s.Stages[stage]
	return ok
}
