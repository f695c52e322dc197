package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gatebank/internal/progress"
)

func TestProgressStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "progress.json")
	store := NewProgressStore(path, 0)

	state := progress.State{
		SchemaVersion: progress.SchemaVersion,
		Solved:        []string{"go:1", "go:2"},
		Bookmarked:    []string{"go:3"},
	}
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Solved) != 2 || len(loaded.Bookmarked) != 1 {
		t.Fatalf("unexpected state %+v", loaded)
	}
}

func TestProgressStoreMissingFileIsEmptyState(t *testing.T) {
	store := NewProgressStore(filepath.Join(t.TempDir(), "nope.json"), 0)
	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Solved) != 0 || state.SchemaVersion != progress.SchemaVersion {
		t.Fatalf("expected fresh state, got %+v", state)
	}
}

func TestProgressStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewProgressStore(path, 0).Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestProgressStoreQuota(t *testing.T) {
	store := NewProgressStore(filepath.Join(t.TempDir(), "progress.json"), 10)
	err := store.Save(context.Background(), progress.State{
		SchemaVersion: progress.SchemaVersion,
		Solved:        []string{"go:1", "go:2", "go:3"},
	})
	if !errors.Is(err, progress.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}
