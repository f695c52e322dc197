package pipeline

import (
	"gatebank/internal/canon"
	"gatebank/internal/domain"
)

// MergeReport summarizes one merge run.
type MergeReport struct {
	Existing   int `json:"existing"`
	Incoming   int `json:"incoming"`
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// Counts flattens the report for the pipeline state file.
func (r MergeReport) Counts() map[string]int {
	return map[string]int{
		"existing":   r.Existing,
		"incoming":   r.Incoming,
		"added":      r.Added,
		"duplicates": r.Duplicates,
	}
}

// Merge folds newly harvested questions into the existing source.
// Identity is the question UID; existing records win so manual fixes
// in the stored source survive a re-scrape.
func Merge(existing, incoming []domain.RawQuestion) ([]domain.RawQuestion, MergeReport) {
	report := MergeReport{Existing: len(existing), Incoming: len(incoming)}

	seen := make(map[string]struct{}, len(existing))
	merged := make([]domain.RawQuestion, 0, len(existing)+len(incoming))
	for _, q := range existing {
		uid := canon.BuildQuestionUID(q)
		seen[uid] = struct{}{}
		merged = append(merged, q)
	}

	for _, q := range incoming {
		uid := canon.BuildQuestionUID(q)
		if _, dup := seen[uid]; dup {
			report.Duplicates++
			continue
		}
		seen[uid] = struct{}{}
		merged = append(merged, q)
		report.Added++
	}
	return merged, report
}
