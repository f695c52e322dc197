package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"gatebank/internal/answers"
	"gatebank/internal/domain"
	"gatebank/internal/scrape"
)

// BackfillReport summarizes one backfill run.
type BackfillReport struct {
	Scanned int            `json:"scanned"`
	Missing int            `json:"missing"`
	Filled  int            `json:"filled"`
	ByType  map[string]int `json:"byType"`
}

// Counts flattens the report for the pipeline state file.
func (r BackfillReport) Counts() map[string]int {
	counts := map[string]int{
		"scanned": r.Scanned,
		"missing": r.Missing,
		"filled":  r.Filled,
	}
	for recordType, n := range r.ByType {
		counts["type_"+recordType] = n
	}
	return counts
}

// Backfill recovers answer records from question bodies for questions
// the store cannot already grade. Records found are added to the store
// and returned keyed by question UID; questions with no join identity
// or no recognizable answer text stay missing.
func Backfill(questions []domain.CanonicalQuestion, store *answers.Store) (map[string]domain.AnswerRecord, BackfillReport) {
	report := BackfillReport{ByType: make(map[string]int)}
	found := make(map[string]domain.AnswerRecord)

	for _, q := range questions {
		report.Scanned++
		identity := answers.ResolveIdentity(q)
		if !identity.HasIdentity {
			report.Missing++
			continue
		}
		if store.Lookup(identity) != nil {
			continue
		}
		report.Missing++

		record, ok := scrape.ExtractAnswer(q.Question)
		if !ok {
			continue
		}
		key := identity.QuestionUID
		if key == "" {
			key = identity.StorageUID
		}
		found[key] = record
		store.AddRecord(key, record)
		report.Filled++
		report.ByType[string(record.Type)]++
	}
	return found, report
}

// WriteBackfilledRecords persists recovered records in the by-question-
// uid store format, so a later run loads them like any other store file.
func WriteBackfilledRecords(path string, records map[string]domain.AnswerRecord) error {
	payload := struct {
		Records map[string]domain.AnswerRecord `json:"records_by_question_uid"`
	}{Records: records}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backfilled records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backfilled records: %w", err)
	}
	return nil
}
