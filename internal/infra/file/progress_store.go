// Package file persists progress state as a JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gatebank/internal/progress"
)

// ProgressStore writes the progress state to a single JSON file,
// atomically via rename. MaxBytes bounds the encoded size; zero means
// unbounded.
type ProgressStore struct {
	path     string
	maxBytes int
}

func NewProgressStore(path string, maxBytes int) *ProgressStore {
	return &ProgressStore{path: path, maxBytes: maxBytes}
}

func (s *ProgressStore) Load(_ context.Context) (progress.State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return progress.State{SchemaVersion: progress.SchemaVersion}, nil
	}
	if err != nil {
		return progress.State{}, fmt.Errorf("read progress file: %w", err)
	}
	var state progress.State
	if err := json.Unmarshal(data, &state); err != nil {
		return progress.State{}, fmt.Errorf("decode progress file: %w", err)
	}
	return state, nil
}

func (s *ProgressStore) Save(_ context.Context, state progress.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return progress.ErrQuotaExceeded
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create progress dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write progress file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
