// Package canon derives canonical question records from raw scraped
// data: subject resolution, subtopic extraction, exam metadata, and
// stable join identities.
package canon

import (
	"regexp"
	"strings"

	"gatebank/internal/domain"
	"gatebank/internal/taxonomy"
)

// Normalizer maps raw questions to canonical records. Construct one per
// process and inject it; there is no package-level state.
type Normalizer struct {
	lookup *taxonomy.Lookup
}

// NewNormalizer builds a normalizer around a precomputed lookup; pass
// nil to derive the tables from the compiled-in taxonomy.
func NewNormalizer(lookup *taxonomy.Lookup) *Normalizer {
	if lookup == nil {
		lookup = taxonomy.BuildLookup()
	}
	return &Normalizer{lookup: lookup}
}

// Normalize produces a best-effort canonical record. It never fails on a
// malformed input: every field is defensively defaulted and the UID is
// always non-empty.
func (n *Normalizer) Normalize(raw domain.RawQuestion) domain.CanonicalQuestion {
	subject := n.ResolveSubject(raw.Title, raw.Tags)
	subjectSlug := taxonomy.SubjectSlug(subject)

	q := domain.CanonicalQuestion{
		UID:         BuildQuestionUID(raw),
		Title:       raw.Title,
		Question:    raw.Question,
		Link:        raw.Link,
		Exam:        ExtractExamMeta(raw),
		Subject:     subject,
		SubjectSlug: subjectSlug,
		Subtopics:   n.ExtractSubtopics(raw.Tags, subject),
		TagsRaw:     append([]string(nil), raw.Tags...),
		IDStr:       raw.IDStr,
		Volume:      raw.Volume,
	}

	q.Type = domain.NormalizeQuestionType(raw.Type)
	if q.Type == domain.TypeUnknown {
		q.Type = DetectType(raw.Tags, raw.Title)
	}
	return q
}

var (
	msqHint = regexp.MustCompile(`\bmsq\b|\bmultiple\s+select\b`)
	natHint = regexp.MustCompile(`\bnat\b|\bnumerical\s+answer\b`)
)

// DetectType guesses the question type from tag/title hints. MCQ is the
// default: most exam questions are single-choice.
func DetectType(tags []string, title string) domain.QuestionType {
	allText := strings.ToLower(strings.Join(append(append([]string{}, tags...), title), " "))
	switch {
	case msqHint.MatchString(allText):
		return domain.TypeMSQ
	case natHint.MatchString(allText):
		return domain.TypeNAT
	default:
		return domain.TypeMCQ
	}
}
