package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"gatebank/internal/domain"
	"gatebank/internal/progress"
	"github.com/redis/go-redis/v9"
)

// ProgressStore persists progress state as one JSON value per user.
// Connectivity failures surface as domain.ErrStorageUnavailable so the
// import path can report them as such.
type ProgressStore struct {
	client *redis.Client
	userID string
}

func NewProgressStore(client *redis.Client, userID string) *ProgressStore {
	return &ProgressStore{client: client, userID: userID}
}

func (s *ProgressStore) Load(ctx context.Context) (progress.State, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err == redis.Nil {
		return progress.State{SchemaVersion: progress.SchemaVersion}, nil
	}
	if err != nil {
		return progress.State{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	var state progress.State
	if err := json.Unmarshal(data, &state); err != nil {
		return progress.State{}, fmt.Errorf("decode progress state: %w", err)
	}
	return state, nil
}

func (s *ProgressStore) Save(ctx context.Context, state progress.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode progress state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *ProgressStore) key() string {
	return "progress:state:" + s.userID
}
