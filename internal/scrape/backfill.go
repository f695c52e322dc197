package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"gatebank/internal/domain"
)

// Answer extraction works on the question body text. The selected
// answer widget is the most reliable signal; free-text "Answer: B"
// styles are the fallback.
var (
	widgetPattern = regexp.MustCompile(
		`(?is)correct\s+answer\s*(?:is|:)?\s*([A-D](?:\s*[,;]\s*[A-D])*|[-+]?\d+(?:\.\d+)?(?:\s*(?:to|–|—|-)\s*[-+]?\d+(?:\.\d+)?)?)\b`)
	fallbackPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*answer\s*[:\-]\s*([A-D](?:\s*[,;]\s*[A-D])*|[-+]?\d+(?:\.\d+)?(?:\s*(?:to|–|—|-)\s*[-+]?\d+(?:\.\d+)?)?)\s*$`),
		regexp.MustCompile(`(?i)\bans(?:wer)?\s*[.:]\s*([A-D](?:\s*[,;]\s*[A-D])*|[-+]?\d+(?:\.\d+)?)\b`),
	}
	optionListPattern = regexp.MustCompile(`^[A-D](\s*[,;]\s*[A-D])*$`)
	rangePattern      = regexp.MustCompile(`^([-+]?\d+(?:\.\d+)?)\s*(?:to|–|—|-)\s*([-+]?\d+(?:\.\d+)?)$`)
)

// ExtractAnswer derives an answer record from question body text.
// Returns false when no pattern matches; heuristic extraction must
// never invent an answer.
func ExtractAnswer(content string) (domain.AnswerRecord, bool) {
	text := stripTags(content)

	if m := widgetPattern.FindStringSubmatch(text); m != nil {
		if record, ok := parseToken(m[1]); ok {
			return record, true
		}
	}
	for _, pattern := range fallbackPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if record, ok := parseToken(m[1]); ok {
				return record, true
			}
		}
	}
	return domain.AnswerRecord{}, false
}

// parseToken classifies one extracted answer token: an option letter
// (MCQ), a letter list (MSQ), a number (NAT), or a numeric range (NAT
// with tolerance at the range midpoint).
func parseToken(token string) (domain.AnswerRecord, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.AnswerRecord{}, false
	}
	upper := strings.ToUpper(token)

	if optionListPattern.MatchString(upper) {
		options := splitOptions(upper)
		if len(options) == 1 {
			return domain.AnswerRecord{
				Type:   domain.AnswerMCQ,
				Answer: domain.AnswerValue{Options: options},
			}, true
		}
		return domain.AnswerRecord{
			Type:   domain.AnswerMSQ,
			Answer: domain.AnswerValue{Options: options},
		}, true
	}

	if m := rangePattern.FindStringSubmatch(token); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && hi >= lo {
			return domain.AnswerRecord{
				Type:      domain.AnswerNAT,
				Answer:    domain.AnswerValue{Numbers: []float64{(lo + hi) / 2}},
				Tolerance: &domain.Tolerance{Abs: (hi - lo) / 2},
			}, true
		}
	}

	if value, err := strconv.ParseFloat(token, 64); err == nil {
		return domain.AnswerRecord{
			Type:   domain.AnswerNAT,
			Answer: domain.AnswerValue{Numbers: []float64{value}},
		}, true
	}
	return domain.AnswerRecord{}, false
}

func splitOptions(token string) []string {
	parts := regexp.MustCompile(`[,;]`).Split(token, -1)
	var out []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(content string) string {
	return tagPattern.ReplaceAllString(content, " ")
}
