package answers

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gatebank/internal/domain"
)

var allowedOptions = map[string]struct{}{"A": {}, "B": {}, "C": {}, "D": {}}

// Submission is a user's answer to one question. Value carries MCQ
// letters and NAT numbers; Values carries MSQ selections.
type Submission struct {
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// Evaluate grades a submission against an answer record. MCQ compares
// case-insensitively, MSQ compares the option sets order-independently,
// NAT compares numerically within the absolute tolerance (any of several
// accepted values may match). Never returns an error: absence and
// unsupported types are statuses, not failures.
func Evaluate(record *domain.AnswerRecord, submission Submission) domain.EvalResult {
	if record == nil || record.Type == "" {
		return domain.EvalResult{Status: domain.EvalMissing}
	}

	switch record.Type {
	case domain.AnswerMCQ:
		return evaluateMCQ(record, submission)
	case domain.AnswerMSQ:
		return evaluateMSQ(record, submission)
	case domain.AnswerNAT:
		return evaluateNAT(record, submission)
	default:
		return domain.EvalResult{Status: domain.EvalUnsupported}
	}
}

func evaluateMCQ(record *domain.AnswerRecord, submission Submission) domain.EvalResult {
	submitted := strings.ToUpper(strings.TrimSpace(submission.Value))
	expected := ""
	if len(record.Answer.Options) > 0 {
		expected = strings.ToUpper(strings.TrimSpace(record.Answer.Options[0]))
	}
	return domain.EvalResult{
		Status:  domain.EvalEvaluated,
		Correct: expected != "" && submitted == expected,
	}
}

func evaluateMSQ(record *domain.AnswerRecord, submission Submission) domain.EvalResult {
	submitted := normalizeOptionSet(submission.Values)
	if len(submitted) == 0 {
		return domain.EvalResult{Status: domain.EvalInvalidInput}
	}
	expected := normalizeOptionSet(record.Answer.Options)

	correct := len(submitted) == len(expected)
	if correct {
		for i := range submitted {
			if submitted[i] != expected[i] {
				correct = false
				break
			}
		}
	}
	return domain.EvalResult{Status: domain.EvalEvaluated, Correct: correct}
}

func evaluateNAT(record *domain.AnswerRecord, submission Submission) domain.EvalResult {
	submitted, err := strconv.ParseFloat(strings.TrimSpace(submission.Value), 64)
	if err != nil {
		return domain.EvalResult{Status: domain.EvalInvalidInput}
	}

	tolerance := 0.0
	if record.Tolerance != nil {
		tolerance = record.Tolerance.Abs
	}

	for _, expected := range record.Answer.Numbers {
		if math.Abs(submitted-expected) <= tolerance {
			return domain.EvalResult{Status: domain.EvalEvaluated, Correct: true}
		}
	}
	return domain.EvalResult{Status: domain.EvalEvaluated}
}

// normalizeOptionSet uppercases, keeps only A–D, dedupes, and sorts so
// comparison is order-independent.
func normalizeOptionSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		upper := strings.ToUpper(strings.TrimSpace(value))
		if _, ok := allowedOptions[upper]; !ok {
			continue
		}
		if _, dup := seen[upper]; dup {
			continue
		}
		seen[upper] = struct{}{}
		out = append(out, upper)
	}
	sort.Strings(out)
	return out
}
