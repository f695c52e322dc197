// Package postgres loads question sources stored as JSONB documents.
package postgres

import (
	"context"
	"fmt"

	"gatebank/internal/bank"
	"gatebank/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SourceLoader implements bank.Loader over a question_sources table.
// Each row is one named source holding the full raw question array.
type SourceLoader struct {
	pool *pgxpool.Pool
}

func NewSourceLoader(pool *pgxpool.Pool) *SourceLoader {
	return &SourceLoader{pool: pool}
}

func (l *SourceLoader) LoadSource(ctx context.Context, name string) ([]domain.RawQuestion, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_sources WHERE name=$1`, name).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load source %q: %w", name, err)
	}
	return bank.DecodeSource(raw)
}

// UpsertSource writes a source document, replacing any prior version.
// Used by the pipeline's merge stage.
func (l *SourceLoader) UpsertSource(ctx context.Context, name string, data []byte) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO question_sources (name, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, name, data)
	if err != nil {
		return fmt.Errorf("upsert source %q: %w", name, err)
	}
	return nil
}
