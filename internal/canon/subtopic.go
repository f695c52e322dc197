package canon

import (
	"gatebank/internal/domain"
	"gatebank/internal/taxonomy"
)

// The scraped source attaches every subtopic tag used anywhere in an exam
// section to every question in that section; tag order is the only
// reliable specificity signal. Capping at one and trusting order kills
// the cross-subtopic contamination. Known tradeoff: wrong when the truly
// correct subtopic is not the first-appearing tag.
const maxSubtopicsPerQuestion = 1

// ExtractSubtopics selects at most one canonical subtopic for the
// resolved subject, preserving tag order. Empty when the subject is
// Unknown or has no hierarchy entry.
func (n *Normalizer) ExtractSubtopics(tags []string, subject string) []domain.Subtopic {
	table := n.lookup.SubtopicsBySubject[subject]
	if subject == taxonomy.SubjectUnknown || len(table) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, maxSubtopicsPerQuestion)
	var out []domain.Subtopic
	for _, tag := range tags {
		norm := taxonomy.NormalizeToken(tag)
		sub, ok := table[norm]
		if !ok {
			continue
		}
		if _, dup := seen[sub.Slug]; dup {
			continue
		}
		seen[sub.Slug] = struct{}{}
		out = append(out, sub)
		if len(out) >= maxSubtopicsPerQuestion {
			break
		}
	}
	return out
}
