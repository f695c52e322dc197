package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gatebank/internal/answers"
	"gatebank/internal/canon"
	"gatebank/internal/domain"
	"gatebank/internal/taxonomy"
)

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), StateFileName)

	state, err := LoadState(path)
	if err != nil {
		t.Fatalf("fresh load: %v", err)
	}
	if state.Done("harvest") {
		t.Fatal("fresh state has no completed stages")
	}

	state = state.Complete("harvest", map[string]int{"questions": 42})
	if err := state.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := LoadState(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Done("harvest") {
		t.Fatal("completed stage lost on reload")
	}
	if reloaded.Stages["harvest"].Counts["questions"] != 42 {
		t.Fatalf("counts lost: %+v", reloaded.Stages["harvest"])
	}
}

type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return []byte(`<html><body></body></html>`), nil
	}
	return []byte(page), nil
}

func listingPage(hasNext bool, items ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="qa-q-list">`)
	for _, item := range items {
		sb.WriteString(item)
	}
	sb.WriteString(`</div>`)
	if hasNext {
		sb.WriteString(`<div class="qa-page-links"><a class="qa-page-next" href="#">next</a></div>`)
	}
	sb.WriteString(`</body></html>`)
	return sb.String()
}

func listingItem(id, title string) string {
	return `<div class="qa-q-list-item">` +
		`<div class="qa-q-item-title"><a href="/` + id + `/q">` + title + `</a></div>` +
		`<div class="qa-q-item-content"><p>body</p></div>` +
		`</div>`
}

func TestHarvestProbesCandidatesAndPaginates(t *testing.T) {
	base := "https://forum.example"
	fetcher := &fakeFetcher{pages: map[string]string{
		// First candidate tag is empty; second one has two pages.
		base + "/tag/gatecse-2024-set1":           listingPage(false),
		base + "/tag/gatecse-2024-set-1":          listingPage(true, listingItem("1", "Q1")),
		base + "/tag/gatecse-2024-set-1?start=20": listingPage(false, listingItem("2", "Q2")),
	}}

	questions, counts, err := Harvest(context.Background(), fetcher, base, []canon.YearSet{{Year: 2024, Set: 1}})
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions across pages, got %d", len(questions))
	}
	if counts["gatecse-2024-set-1"] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
	// The winning tag is stamped onto every harvested question.
	for _, q := range questions {
		if q.Year != "gatecse-2024-set-1" {
			t.Fatalf("year tag not stamped: %+v", q)
		}
		if !hasTag(q.Tags, "gatecse-2024-set-1") {
			t.Fatalf("tag not appended: %v", q.Tags)
		}
	}
}

func TestHarvestSkipsSittingWithNoTag(t *testing.T) {
	fetcher := &fakeFetcher{}
	questions, counts, err := Harvest(context.Background(), fetcher, "https://forum.example", []canon.YearSet{{Year: 1993, Set: 0}})
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	if len(questions) != 0 || len(counts) != 0 {
		t.Fatalf("expected nothing for an unknown sitting, got %d/%v", len(questions), counts)
	}
}

func TestNormaliseReport(t *testing.T) {
	normalizer := canon.NewNormalizer(nil)
	raw := []domain.RawQuestion{
		{
			Title: "GATE CSE 2024 | Set 1 | Question: 12",
			Link:  "https://gateoverflow.in/417492/q",
			Tags:  []string{"gatecse-2024-set1", "databases", "functional-dependency"},
		},
		{Title: "Mystery", Tags: []string{"out-of-syllabus"}},
	}

	questions, report := Normalise(raw, normalizer)
	if len(questions) != 2 || report.Total != 2 {
		t.Fatalf("unexpected output %d/%+v", len(questions), report)
	}
	if report.UnknownSubject != 1 {
		t.Fatalf("expected 1 unknown subject, got %d", report.UnknownSubject)
	}
	if report.WithoutExam != 1 {
		t.Fatalf("expected 1 question without exam, got %d", report.WithoutExam)
	}
	if report.ByType["MCQ"] != 2 {
		t.Fatalf("unexpected type tally %v", report.ByType)
	}
}

func TestMergeKeepsExistingOnDuplicate(t *testing.T) {
	existing := []domain.RawQuestion{
		{QuestionUID: "go:1", Title: "curated title"},
	}
	incoming := []domain.RawQuestion{
		{Link: "https://gateoverflow.in/1/q", Title: "scraped title"},
		{Link: "https://gateoverflow.in/2/q", Title: "new question"},
	}

	merged, report := Merge(existing, incoming)
	if report.Added != 1 || report.Duplicates != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged questions, got %d", len(merged))
	}
	if merged[0].Title != "curated title" {
		t.Fatal("existing record must win over the re-scrape")
	}
}

func intPtr(v int) *int { return &v }

func TestValidateFindsIssues(t *testing.T) {
	questions := []domain.CanonicalQuestion{
		{UID: "go:1", Title: "ok", Volume: intPtr(130)},
		{UID: "go:1", Title: "dup"},
		{UID: "go:2"},
		{UID: "go:3", Title: "bad volume", Volume: intPtr(99)},
		{Title: "no uid"},
	}

	report, err := Validate(questions)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	reasons := make(map[string]int)
	for _, issue := range report.Issues {
		reasons[issue.Reason]++
	}
	if reasons["duplicate_uid"] != 1 || reasons["missing_title"] != 1 ||
		reasons["invalid_volume"] != 1 || reasons["missing_uid"] != 1 {
		t.Fatalf("unexpected issues %v", reasons)
	}
}

func TestValidatePassesCleanBank(t *testing.T) {
	report, err := Validate([]domain.CanonicalQuestion{
		{UID: "go:1", Title: "fine", Volume: intPtr(65)},
		{UID: "go:2", Title: "also fine"},
	})
	if err != nil || !report.OK() {
		t.Fatalf("clean bank must pass: %+v %v", report, err)
	}
}

func TestAuditReports(t *testing.T) {
	questions := []domain.CanonicalQuestion{
		{
			UID: "go:1", Title: "Q1", Subject: "Databases", SubjectSlug: "databases",
			Exam:    domain.ExamMeta{YearSetKey: "2024-s1"},
			TagsRaw: []string{"databases", "computer-networks"},
		},
		{
			UID: "go:2", Title: "Q2", Subject: taxonomy.SubjectUnknown, SubjectSlug: taxonomy.SubjectUnknownSlug,
			TagsRaw: []string{"weird-tag"},
		},
	}

	bySubject := CountsBySubject(questions)
	if len(bySubject) != 2 {
		t.Fatalf("unexpected subject rows %v", bySubject)
	}

	byYearSet := CountsByYearSet(questions)
	if len(byYearSet) != 2 {
		t.Fatalf("unexpected year-set rows %v", byYearSet)
	}

	unknown := UnknownSubjects(questions)
	if len(unknown) != 1 || unknown[0][0] != "go:2" {
		t.Fatalf("unexpected unknown rows %v", unknown)
	}

	conflicts := SubjectConflicts(questions, taxonomy.BuildLookup())
	if len(conflicts) != 1 || conflicts[0][0] != "go:1" {
		t.Fatalf("expected a two-subject conflict, got %v", conflicts)
	}

	leaky := []domain.CanonicalQuestion{{
		UID: "go:3", Subject: "Databases",
		Subtopics: []domain.Subtopic{{Slug: "pumping-lemma"}},
	}}
	if rows := SubtopicLeakage(leaky); len(rows) != 1 {
		t.Fatalf("leakage not detected: %v", rows)
	}
	if rows := SubtopicLeakage(questions); len(rows) != 0 {
		t.Fatalf("false leakage: %v", rows)
	}
}

func TestWriteCSVAndPrecompute(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "counts.csv")
	if err := WriteCSV(csvPath, []string{"subject", "count"}, [][]string{{"Databases", "1"}}); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	lookupPath := filepath.Join(dir, "subtopics.json")
	if err := Precompute(lookupPath); err != nil {
		t.Fatalf("precompute: %v", err)
	}
	lookup, err := taxonomy.LoadLookup(lookupPath)
	if err != nil {
		t.Fatalf("reload lookup: %v", err)
	}
	if lookup.Schema != taxonomy.SchemaVersion {
		t.Fatalf("unexpected schema %d", lookup.Schema)
	}
}

func TestBackfillRecoversMissingAnswers(t *testing.T) {
	store := answers.NewStore()
	store.AddRecord("go:1", domain.AnswerRecord{
		Type:   domain.AnswerMCQ,
		Answer: domain.AnswerValue{Options: []string{"A"}},
	})

	questions := []domain.CanonicalQuestion{
		{UID: "go:1", Question: "Correct answer is D"},
		{UID: "go:2", Question: "<p>The correct answer is B.</p>"},
		{UID: "go:3", Question: "No answer text anywhere"},
	}

	found, report := Backfill(questions, store)
	if report.Scanned != 3 || report.Missing != 2 || report.Filled != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	// go:1 already has a record; its body must not overwrite it.
	record, ok := found["go:2"]
	if len(found) != 1 || !ok {
		t.Fatalf("unexpected recovered set %v", found)
	}
	if record.Type != domain.AnswerMCQ || record.Answer.Options[0] != "B" {
		t.Fatalf("unexpected record %+v", record)
	}
	if store.LookupQuestion(questions[1]) == nil {
		t.Fatal("recovered record not added to store")
	}

	path := filepath.Join(t.TempDir(), "answers-backfilled.json")
	if err := WriteBackfilledRecords(path, found); err != nil {
		t.Fatalf("write records: %v", err)
	}
	reloaded, err := answers.Load(answers.Paths{ByQuestionUID: path})
	if err != nil {
		t.Fatalf("reload records: %v", err)
	}
	if !reloaded.HasQuestionUID("go:2") {
		t.Fatal("persisted record lost on reload")
	}
}

func TestLoadStateRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), StateFileName)
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadState(path); err == nil {
		t.Fatal("expected decode error")
	}
}
