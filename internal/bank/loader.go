// Package bank builds the canonical question bank from ranked raw
// sources and serves lookups and facet summaries over it.
package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gatebank/internal/domain"
)

// Loader fetches one raw question source by name.
type Loader interface {
	LoadSource(ctx context.Context, name string) ([]domain.RawQuestion, error)
}

// FileLoader reads question sources from JSON files on disk. The name
// passed to LoadSource is a file path.
type FileLoader struct{}

func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

func (l *FileLoader) LoadSource(_ context.Context, name string) ([]domain.RawQuestion, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	return DecodeSource(data)
}

// DecodeSource accepts both a bare JSON array of questions and the
// enveloped form {"questions": [...]}.
func DecodeSource(data []byte) ([]domain.RawQuestion, error) {
	var questions []domain.RawQuestion
	if err := json.Unmarshal(data, &questions); err == nil {
		return questions, nil
	}
	var envelope struct {
		Questions []domain.RawQuestion `json:"questions"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	return envelope.Questions, nil
}
