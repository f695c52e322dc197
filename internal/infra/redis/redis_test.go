package redis

import (
	"context"
	"testing"
	"time"

	"gatebank/internal/bank"
	"gatebank/internal/domain"
	"gatebank/internal/infra/memory"
	"gatebank/internal/progress"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func sampleSource() []domain.RawQuestion {
	return []domain.RawQuestion{
		{
			Title: "GATE CSE 2024 | Set 1 | Question: 12",
			Link:  "https://gateoverflow.in/417492/gate-cse-2024-set-1-question-12",
			Tags:  []string{"gatecse-2024-set1", "databases"},
		},
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

func TestSourceCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		Loader: memory.NewStaticLoader(map[string][]domain.RawQuestion{
			"bank-a": sampleSource(),
		}),
	}
	cache := NewSourceCache(newClient(mr), loader, time.Minute)

	questions, err := cache.LoadSource(context.Background(), "bank-a")
	if err != nil {
		t.Fatalf("load source: %v", err)
	}
	if len(questions) != 1 || loader.calls != 1 {
		t.Fatalf("unexpected first load: %d questions, %d calls", len(questions), loader.calls)
	}

	// Second call should hit cache, loader not incremented.
	_, _ = cache.LoadSource(context.Background(), "bank-a")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestSourceCacheInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		Loader: memory.NewStaticLoader(map[string][]domain.RawQuestion{
			"bank-a": sampleSource(),
		}),
	}
	cache := NewSourceCache(newClient(mr), loader, time.Minute)

	_, _ = cache.LoadSource(context.Background(), "bank-a")
	if err := cache.Invalidate(context.Background(), "bank-a"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.LoadSource(context.Background(), "bank-a")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", loader.calls)
	}
}

func TestCanonCacheContentAddressing(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewCanonCache(newClient(mr), time.Minute)

	keyA := Key([]byte(`source-a`))
	keyB := Key([]byte(`source-b`))
	if keyA == keyB {
		t.Fatal("different sources must hash to different keys")
	}
	if keyA != Key([]byte(`source-a`)) {
		t.Fatal("identical sources must hash to the same key")
	}

	questions := []domain.CanonicalQuestion{{UID: "go:1", Subject: "Databases"}}
	if err := cache.Set(context.Background(), keyA, questions); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := cache.Get(context.Background(), keyA)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].UID != "go:1" {
		t.Fatalf("unexpected payload %+v", got)
	}

	if _, ok, _ := cache.Get(context.Background(), keyB); ok {
		t.Fatal("unrelated key must miss")
	}
}

func TestProgressStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	store := NewProgressStore(client, "user-1")

	state := progress.State{
		SchemaVersion: progress.SchemaVersion,
		Solved:        []string{"go:1"},
		Bookmarked:    []string{"go:2"},
	}
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Solved) != 1 || len(loaded.Bookmarked) != 1 {
		t.Fatalf("unexpected state %+v", loaded)
	}

	// Users are isolated by key.
	other, err := NewProgressStore(client, "user-2").Load(context.Background())
	if err != nil {
		t.Fatalf("load other user: %v", err)
	}
	if len(other.Solved) != 0 {
		t.Fatalf("cross-user leak: %+v", other)
	}
}

func TestProgressStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	store := NewProgressStore(client, "user-1")
	if err := store.Save(context.Background(), progress.State{SchemaVersion: progress.SchemaVersion}); err == nil {
		t.Fatal("expected save failure after redis shutdown")
	}
}
