package pipeline

import (
	"gatebank/internal/canon"
	"gatebank/internal/domain"
)

// NormaliseReport summarizes one normalise run.
type NormaliseReport struct {
	Total          int            `json:"total"`
	UnknownSubject int            `json:"unknownSubject"`
	WithoutExam    int            `json:"withoutExam"`
	ByType         map[string]int `json:"byType"`
}

// Counts flattens the report for the pipeline state file.
func (r NormaliseReport) Counts() map[string]int {
	counts := map[string]int{
		"total":           r.Total,
		"unknown_subject": r.UnknownSubject,
		"without_exam":    r.WithoutExam,
	}
	for qType, n := range r.ByType {
		counts["type_"+qType] = n
	}
	return counts
}

// Normalise converts raw questions to canonical form and tallies the
// classification outcomes. Unknown subjects are kept, not dropped: the
// audit stage lists them for manual tag fixes.
func Normalise(raw []domain.RawQuestion, normalizer *canon.Normalizer) ([]domain.CanonicalQuestion, NormaliseReport) {
	report := NormaliseReport{ByType: make(map[string]int)}
	questions := make([]domain.CanonicalQuestion, 0, len(raw))

	for _, r := range raw {
		q := normalizer.Normalize(r)
		questions = append(questions, q)

		report.Total++
		if q.SubjectSlug == "unknown" {
			report.UnknownSubject++
		}
		if q.Exam.YearSetKey == "" {
			report.WithoutExam++
		}
		report.ByType[string(q.Type)]++
	}
	return questions, report
}
