// Package progress tracks which questions a user has solved and
// bookmarked, persists that state through a pluggable store, and
// broadcasts updates to subscribers.
package progress

import (
	"context"
	"sort"
	"sync"
	"time"
)

// SchemaVersion guards the persisted and exported state format.
const SchemaVersion = 1

// State is the persisted form of a user's progress.
type State struct {
	SchemaVersion int       `json:"schemaVersion"`
	Solved        []string  `json:"solved"`
	Bookmarked    []string  `json:"bookmarked"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// Store persists progress state. Implementations live under
// internal/infra.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// Snapshot is the view pushed to subscribers and returned by Counts.
type Snapshot struct {
	Solved        []string  `json:"solved"`
	Bookmarked    []string  `json:"bookmarked"`
	SolvedCount   int       `json:"solvedCount"`
	BookmarkCount int       `json:"bookmarkCount"`
	Total         int       `json:"total"`
	Percentage    float64   `json:"percentage"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Tracker is the in-memory authority over one user's progress. All
// methods are safe for concurrent use.
type Tracker struct {
	store Store
	now   func() time.Time

	mu          sync.RWMutex
	solved      map[string]struct{}
	bookmarked  map[string]struct{}
	total       int
	subscribers map[chan Snapshot]struct{}
}

// NewTracker loads persisted state from the store. A store read error
// is fatal: starting with silently-empty progress would look like data
// loss to the user.
func NewTracker(ctx context.Context, store Store) (*Tracker, error) {
	t := newTrackerWithClock(store, time.Now)
	state, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, uid := range state.Solved {
		t.solved[uid] = struct{}{}
	}
	for _, uid := range state.Bookmarked {
		t.bookmarked[uid] = struct{}{}
	}
	return t, nil
}

// newTrackerWithClock allows deterministic timestamps in tests.
func newTrackerWithClock(store Store, now func() time.Time) *Tracker {
	return &Tracker{
		store:       store,
		now:         now,
		solved:      make(map[string]struct{}),
		bookmarked:  make(map[string]struct{}),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// SetTotal records the bank size used for percentage reporting.
func (t *Tracker) SetTotal(total int) {
	t.mu.Lock()
	t.total = total
	t.broadcastLocked()
	t.mu.Unlock()
}

// ToggleSolved flips the solved flag for one question and persists.
func (t *Tracker) ToggleSolved(ctx context.Context, uid string) (bool, error) {
	t.mu.Lock()
	_, solved := t.solved[uid]
	if solved {
		delete(t.solved, uid)
	} else {
		t.solved[uid] = struct{}{}
	}
	state := t.stateLocked()
	t.broadcastLocked()
	t.mu.Unlock()

	return !solved, t.store.Save(ctx, state)
}

// ToggleBookmark flips the bookmark flag for one question and persists.
func (t *Tracker) ToggleBookmark(ctx context.Context, uid string) (bool, error) {
	t.mu.Lock()
	_, marked := t.bookmarked[uid]
	if marked {
		delete(t.bookmarked, uid)
	} else {
		t.bookmarked[uid] = struct{}{}
	}
	state := t.stateLocked()
	t.broadcastLocked()
	t.mu.Unlock()

	return !marked, t.store.Save(ctx, state)
}

// MarkSolved sets the solved flag without toggling (used after a
// correct evaluation).
func (t *Tracker) MarkSolved(ctx context.Context, uid string) error {
	t.mu.Lock()
	if _, ok := t.solved[uid]; ok {
		t.mu.Unlock()
		return nil
	}
	t.solved[uid] = struct{}{}
	state := t.stateLocked()
	t.broadcastLocked()
	t.mu.Unlock()

	return t.store.Save(ctx, state)
}

// IsSolved reports the solved flag for one question.
func (t *Tracker) IsSolved(uid string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.solved[uid]
	return ok
}

// IsBookmarked reports the bookmark flag for one question.
func (t *Tracker) IsBookmarked(uid string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.bookmarked[uid]
	return ok
}

// Prune drops flags for questions no longer in the bank. Called after
// a bank reload so percentages stay honest.
func (t *Tracker) Prune(ctx context.Context, validUIDs map[string]struct{}) (int, error) {
	t.mu.Lock()
	removed := 0
	for uid := range t.solved {
		if _, ok := validUIDs[uid]; !ok {
			delete(t.solved, uid)
			removed++
		}
	}
	for uid := range t.bookmarked {
		if _, ok := validUIDs[uid]; !ok {
			delete(t.bookmarked, uid)
			removed++
		}
	}
	state := t.stateLocked()
	t.broadcastLocked()
	t.mu.Unlock()

	if removed == 0 {
		return 0, nil
	}
	return removed, t.store.Save(ctx, state)
}

// Snapshot returns the current progress view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

// Subscribe returns a channel receiving progress snapshots, seeded with
// the current state. The caller must invoke cancel to avoid leaks.
func (t *Tracker) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	t.mu.Lock()
	t.subscribers[ch] = struct{}{}
	initial := t.snapshotLocked()
	t.mu.Unlock()

	ch <- initial

	cancel := func() {
		t.mu.Lock()
		if _, ok := t.subscribers[ch]; ok {
			delete(t.subscribers, ch)
			close(ch)
		}
		t.mu.Unlock()
	}
	return ch, cancel
}

func (t *Tracker) broadcastLocked() {
	snap := t.snapshotLocked()
	for ch := range t.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks
			// the mutation path.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (t *Tracker) snapshotLocked() Snapshot {
	snap := Snapshot{
		Solved:        sortedKeys(t.solved),
		Bookmarked:    sortedKeys(t.bookmarked),
		SolvedCount:   len(t.solved),
		BookmarkCount: len(t.bookmarked),
		Total:         t.total,
		UpdatedAt:     t.now(),
	}
	if t.total > 0 {
		snap.Percentage = float64(len(t.solved)) / float64(t.total) * 100
	}
	return snap
}

func (t *Tracker) stateLocked() State {
	return State{
		SchemaVersion: SchemaVersion,
		Solved:        sortedKeys(t.solved),
		Bookmarked:    sortedKeys(t.bookmarked),
		UpdatedAt:     t.now(),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
