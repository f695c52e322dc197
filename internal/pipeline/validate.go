package pipeline

import (
	"fmt"

	"gatebank/internal/domain"
)

// validVolumes are the legacy answer-book volumes; any other value in
// a question's volume field is a data error.
var validVolumes = map[int]struct{}{65: {}, 130: {}, 195: {}}

// ValidationIssue is one finding, keyed by question UID.
type ValidationIssue struct {
	UID    string `json:"uid"`
	Reason string `json:"reason"`
}

// ValidationReport lists every issue found in a bank.
type ValidationReport struct {
	Total  int               `json:"total"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// Counts flattens the report for the pipeline state file.
func (r ValidationReport) Counts() map[string]int {
	return map[string]int{"total": r.Total, "issues": len(r.Issues)}
}

// OK reports whether the bank passed validation.
func (r ValidationReport) OK() bool { return len(r.Issues) == 0 }

// Validate checks a canonical bank for structural problems: missing
// UIDs or titles, duplicate UIDs, and out-of-range volume references.
// Returns the report and a non-nil error when any issue was found, so
// the pipeline fails loudly instead of publishing a broken bank.
func Validate(questions []domain.CanonicalQuestion) (ValidationReport, error) {
	report := ValidationReport{Total: len(questions)}
	seen := make(map[string]struct{}, len(questions))

	for _, q := range questions {
		if q.UID == "" {
			report.Issues = append(report.Issues, ValidationIssue{Reason: "missing_uid"})
			continue
		}
		if _, dup := seen[q.UID]; dup {
			report.Issues = append(report.Issues, ValidationIssue{UID: q.UID, Reason: "duplicate_uid"})
			continue
		}
		seen[q.UID] = struct{}{}

		if q.Title == "" {
			report.Issues = append(report.Issues, ValidationIssue{UID: q.UID, Reason: "missing_title"})
		}
		if q.Volume != nil {
			if _, ok := validVolumes[*q.Volume]; !ok {
				report.Issues = append(report.Issues, ValidationIssue{UID: q.UID, Reason: "invalid_volume"})
			}
		}
	}

	if !report.OK() {
		return report, fmt.Errorf("bank validation failed with %d issues", len(report.Issues))
	}
	return report, nil
}
