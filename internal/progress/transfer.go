package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gatebank/internal/domain"
)

// Import failure reasons, surfaced to the client verbatim.
const (
	ReasonInvalidJSON        = "invalid_json"
	ReasonUnsupportedSchema  = "unsupported_schema"
	ReasonStorageUnavailable = "storage_unavailable"
	ReasonQuotaExceeded      = "quota_exceeded"
	ReasonWriteFailed        = "write_failed"
)

// ErrQuotaExceeded is returned by stores that enforce a size limit.
var ErrQuotaExceeded = errors.New("progress store quota exceeded")

// ImportMode selects how imported flags combine with existing ones.
type ImportMode string

const (
	ImportMerge   ImportMode = "merge"
	ImportReplace ImportMode = "replace"
)

// TransferError is a typed import/export failure.
type TransferError struct {
	Reason string
	Err    error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("progress transfer failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("progress transfer failed (%s)", e.Reason)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Export serializes the current progress for download. The payload is
// the persisted State shape, so an export can be re-imported as-is.
func (t *Tracker) Export() ([]byte, error) {
	t.mu.RLock()
	state := t.stateLocked()
	t.mu.RUnlock()
	return json.MarshalIndent(state, "", "  ")
}

// ImportResult summarizes an applied import.
type ImportResult struct {
	Mode           ImportMode `json:"mode"`
	SolvedAdded    int        `json:"solvedAdded"`
	BookmarksAdded int        `json:"bookmarksAdded"`
	SolvedTotal    int        `json:"solvedTotal"`
	BookmarksTotal int        `json:"bookmarksTotal"`
	ImportedAt     time.Time  `json:"importedAt"`
}

// Import applies an exported payload. Merge keeps existing flags and
// adds the imported ones; replace discards existing flags first.
// Failures carry a TransferError with one of the Reason constants.
func (t *Tracker) Import(ctx context.Context, payload []byte, mode ImportMode) (ImportResult, error) {
	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return ImportResult{}, &TransferError{Reason: ReasonInvalidJSON, Err: err}
	}
	if state.SchemaVersion != SchemaVersion {
		return ImportResult{}, &TransferError{
			Reason: ReasonUnsupportedSchema,
			Err:    fmt.Errorf("schema version %d, want %d", state.SchemaVersion, SchemaVersion),
		}
	}
	if mode != ImportMerge && mode != ImportReplace {
		mode = ImportMerge
	}

	t.mu.Lock()
	if mode == ImportReplace {
		t.solved = make(map[string]struct{})
		t.bookmarked = make(map[string]struct{})
	}
	result := ImportResult{Mode: mode, ImportedAt: t.now()}
	for _, uid := range state.Solved {
		if _, ok := t.solved[uid]; !ok {
			t.solved[uid] = struct{}{}
			result.SolvedAdded++
		}
	}
	for _, uid := range state.Bookmarked {
		if _, ok := t.bookmarked[uid]; !ok {
			t.bookmarked[uid] = struct{}{}
			result.BookmarksAdded++
		}
	}
	result.SolvedTotal = len(t.solved)
	result.BookmarksTotal = len(t.bookmarked)
	persisted := t.stateLocked()
	t.broadcastLocked()
	t.mu.Unlock()

	if err := t.store.Save(ctx, persisted); err != nil {
		return ImportResult{}, &TransferError{Reason: classifySaveError(err), Err: err}
	}
	return result, nil
}

func classifySaveError(err error) string {
	switch {
	case errors.Is(err, domain.ErrStorageUnavailable):
		return ReasonStorageUnavailable
	case errors.Is(err, ErrQuotaExceeded):
		return ReasonQuotaExceeded
	default:
		return ReasonWriteFailed
	}
}
