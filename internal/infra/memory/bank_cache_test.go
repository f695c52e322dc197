package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"gatebank/internal/bank"
	"gatebank/internal/domain"
	"gatebank/internal/progress"
)

func sampleSource() []domain.RawQuestion {
	return []domain.RawQuestion{
		{
			Title: "GATE CSE 2024 | Set 1 | Question: 12",
			Link:  "https://gateoverflow.in/417492/gate-cse-2024-set-1-question-12",
			Tags:  []string{"gatecse-2024-set1", "databases"},
		},
	}
}

func TestSourceCacheCaches(t *testing.T) {
	loader := &countingLoader{
		Loader: NewStaticLoader(map[string][]domain.RawQuestion{
			"bank-a": sampleSource(),
		}),
	}
	cache := NewSourceCache(loader, time.Minute)

	if _, err := cache.LoadSource(context.Background(), "bank-a"); err != nil {
		t.Fatalf("load source: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.LoadSource(context.Background(), "bank-a"); err != nil {
		t.Fatalf("load source 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestSourceCacheInvalidate(t *testing.T) {
	loader := &countingLoader{
		Loader: NewStaticLoader(map[string][]domain.RawQuestion{
			"bank-a": sampleSource(),
		}),
	}
	cache := NewSourceCache(loader, time.Minute)

	_, _ = cache.LoadSource(context.Background(), "bank-a")
	cache.Invalidate("bank-a")
	_, _ = cache.LoadSource(context.Background(), "bank-a")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", loader.calls)
	}
}

func TestSourceCacheMissingSource(t *testing.T) {
	cache := NewSourceCache(NewStaticLoader(nil), time.Minute)
	if _, err := cache.LoadSource(context.Background(), "nope"); !errors.Is(err, domain.ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

type countingLoader struct {
	bank.Loader
	calls int
}

func (l *countingLoader) LoadSource(ctx context.Context, name string) ([]domain.RawQuestion, error) {
	l.calls++
	return l.Loader.LoadSource(ctx, name)
}

func TestProgressStoreRoundTrip(t *testing.T) {
	store := NewProgressStore(0)
	state := progress.State{
		SchemaVersion: progress.SchemaVersion,
		Solved:        []string{"go:1"},
	}
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Solved) != 1 || loaded.Solved[0] != "go:1" {
		t.Fatalf("unexpected state %+v", loaded)
	}
}

func TestProgressStoreQuota(t *testing.T) {
	store := NewProgressStore(1)
	err := store.Save(context.Background(), progress.State{
		SchemaVersion: progress.SchemaVersion,
		Solved:        []string{"go:1", "go:2"},
	})
	if !errors.Is(err, progress.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}
