package bank

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gatebank/internal/answers"
	"gatebank/internal/canon"
	"gatebank/internal/domain"
)

func question(uid, subjectSlug, yearSetKey string, year int, tags ...string) domain.CanonicalQuestion {
	return domain.CanonicalQuestion{
		UID:         uid,
		Subject:     subjectSlug,
		SubjectSlug: subjectSlug,
		Exam:        domain.ExamMeta{Year: year, YearSetKey: yearSetKey},
		Type:        domain.TypeMCQ,
		TagsRaw:     tags,
	}
}

func TestNewServiceRejectsEmptyBank(t *testing.T) {
	if _, err := NewService(nil); !errors.Is(err, domain.ErrBankInvalid) {
		t.Fatalf("expected ErrBankInvalid, got %v", err)
	}
	// Questions without UIDs collapse to an empty bank.
	if _, err := NewService([]domain.CanonicalQuestion{{Title: "no uid"}}); !errors.Is(err, domain.ErrBankInvalid) {
		t.Fatalf("expected ErrBankInvalid, got %v", err)
	}
}

func TestNewServiceDeduplicatesByUID(t *testing.T) {
	s, err := NewService([]domain.CanonicalQuestion{
		question("go:1", "databases", "2024-s1", 2024, "databases"),
		question("go:1", "algorithms", "2023-s0", 2023, "algorithms"),
		question("go:2", "algorithms", "2023-s0", 2023, "algorithms"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 questions after dedupe, got %d", s.Len())
	}
	q, err := s.GetByUID("go:1")
	if err != nil {
		t.Fatalf("GetByUID failed: %v", err)
	}
	if q.SubjectSlug != "databases" {
		t.Fatalf("first occurrence must win, got %q", q.SubjectSlug)
	}
}

func TestGetByUIDNotFound(t *testing.T) {
	s, _ := NewService([]domain.CanonicalQuestion{question("go:1", "databases", "2024-s1", 2024)})
	if _, err := s.GetByUID("go:404"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestTagsSortedByFrequencyThenName(t *testing.T) {
	s, _ := NewService([]domain.CanonicalQuestion{
		question("go:1", "databases", "2024-s1", 2024, "sql", "databases"),
		question("go:2", "databases", "2024-s1", 2024, "databases"),
		question("go:3", "algorithms", "2023-s0", 2023, "sorting"),
	})
	tags := s.Tags()
	if tags[0].Tag != "databases" || tags[0].Count != 2 {
		t.Fatalf("expected databases first, got %+v", tags[0])
	}
	if tags[1].Tag != "sorting" || tags[2].Tag != "sql" {
		t.Fatalf("ties must break alphabetically, got %+v", tags[1:])
	}
}

func TestFacetsYearBounds(t *testing.T) {
	s, _ := NewService([]domain.CanonicalQuestion{
		question("go:1", "databases", "2024-s1", 2024),
		question("go:2", "algorithms", "1995-s0", 1995),
		question("go:3", "unknown", "", 0),
	})
	facets := s.Facets()
	if facets.MinYear != 1995 || facets.MaxYear != 2024 {
		t.Fatalf("unexpected year bounds: %d..%d", facets.MinYear, facets.MaxYear)
	}
	if len(facets.YearSets) != 2 {
		t.Fatalf("keyless questions must not appear in year facets: %+v", facets.YearSets)
	}
	if len(facets.Subjects) != 3 {
		t.Fatalf("expected 3 subject buckets, got %+v", facets.Subjects)
	}
}

func TestPickBestPrefersCoverage(t *testing.T) {
	store := answers.NewStore()
	store.AddRecord("go:1", domain.AnswerRecord{Type: domain.AnswerMCQ, Answer: domain.AnswerValue{Options: []string{"A"}}})
	store.AddRecord("go:2", domain.AnswerRecord{Type: domain.AnswerMCQ, Answer: domain.AnswerValue{Options: []string{"B"}}})

	normalizer := canon.NewNormalizer(nil)
	candidates := []Candidate{
		{Name: "sparse", Questions: []domain.RawQuestion{
			{QuestionUID: "go:1"}, {QuestionUID: "go:9"},
		}},
		{Name: "dense", Questions: []domain.RawQuestion{
			{QuestionUID: "go:1"}, {QuestionUID: "go:2"},
		}},
	}

	best, scores, err := PickBest(candidates, store, normalizer.Normalize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Name != "dense" {
		t.Fatalf("expected dense source to win, got %q", best.Name)
	}
	if scores[0].Coverage != 0.5 || scores[1].Coverage != 1.0 {
		t.Fatalf("unexpected scores %+v", scores)
	}
}

func TestPickBestTieKeepsRankOrder(t *testing.T) {
	store := answers.NewStore()
	normalizer := canon.NewNormalizer(nil)
	candidates := []Candidate{
		{Name: "primary", Questions: []domain.RawQuestion{{QuestionUID: "go:1"}}},
		{Name: "fallback", Questions: []domain.RawQuestion{{QuestionUID: "go:2"}}},
	}
	best, _, err := PickBest(candidates, store, normalizer.Normalize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Name != "primary" {
		t.Fatalf("equal coverage must keep the earlier candidate, got %q", best.Name)
	}
}

func TestPickBestNoUsableSource(t *testing.T) {
	normalizer := canon.NewNormalizer(nil)
	_, _, err := PickBest([]Candidate{{Name: "empty"}}, answers.NewStore(), normalizer.Normalize)
	if !errors.Is(err, domain.ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestDecodeSourceShapes(t *testing.T) {
	bare, err := DecodeSource([]byte(`[{"title": "Q1", "tags": ["databases"]}]`))
	if err != nil || len(bare) != 1 {
		t.Fatalf("bare array decode failed: %v %v", bare, err)
	}
	enveloped, err := DecodeSource([]byte(`{"questions": [{"title": "Q1"}, {"title": "Q2"}]}`))
	if err != nil || len(enveloped) != 2 {
		t.Fatalf("enveloped decode failed: %v %v", enveloped, err)
	}
	if _, err := DecodeSource([]byte(`"not a bank"`)); err == nil {
		t.Fatal("expected decode error for scalar payload")
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.json")
	if err := os.WriteFile(path, []byte(`[{"title": "Q1"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loader := NewFileLoader()
	questions, err := loader.LoadSource(context.Background(), path)
	if err != nil || len(questions) != 1 {
		t.Fatalf("load failed: %v %v", questions, err)
	}
	if _, err := loader.LoadSource(context.Background(), filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
