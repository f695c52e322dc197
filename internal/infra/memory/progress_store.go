package memory

import (
	"context"
	"sync"

	"gatebank/internal/progress"
)

// ProgressStore keeps progress state in process memory. MaxEntries
// bounds the combined flag count; zero means unbounded.
type ProgressStore struct {
	mu         sync.Mutex
	state      progress.State
	maxEntries int
}

func NewProgressStore(maxEntries int) *ProgressStore {
	return &ProgressStore{maxEntries: maxEntries}
}

func (s *ProgressStore) Load(_ context.Context) (progress.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *ProgressStore) Save(_ context.Context, state progress.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxEntries > 0 && len(state.Solved)+len(state.Bookmarked) > s.maxEntries {
		return progress.ErrQuotaExceeded
	}
	s.state = state
	return nil
}
