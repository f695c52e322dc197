package canon

import (
	"regexp"
	"sort"

	"gatebank/internal/taxonomy"
)

// General Aptitude questions are numbered "GA-8" or "GA Question 3" in
// titles. The subject is special-cased because its generic subtopic tags
// ("probability", "functions") collide with every STEM subject.
var gaTitlePattern = regexp.MustCompile(`(?i)\bga(?:[-\s]?\d+|\s+question[\s:]*\d+)\b`)

const notFound = 1 << 30

// subjectEvidence captures how strongly one subject matches a tag list.
type subjectEvidence struct {
	label              string
	explicitIndex      int // position of the earliest explicit-alias tag
	subtopicCount      int // how many tags hit this subject's subtopic vocabulary
	firstSubtopicIndex int // position of the earliest such tag
}

// ResolveSubject infers exactly one canonical subject from a question's
// title and ordered raw tags. Deterministic: scraped tag sets routinely
// span several subjects (section-wide tag pollution), so conflicting
// evidence is ranked by "most specific, earliest-mentioned, most votes"
// with a fixed priority list as the final tie-break.
func (n *Normalizer) ResolveSubject(title string, tags []string) string {
	normalized := make([]string, len(tags))
	for i, tag := range tags {
		normalized[i] = taxonomy.NormalizeToken(tag)
	}

	if gaTitlePattern.MatchString(title) {
		return taxonomy.GeneralAptitude
	}
	for _, norm := range normalized {
		if n.lookup.IsGeneralAptitudeAlias(norm) {
			return taxonomy.GeneralAptitude
		}
	}

	var explicit, inferred []subjectEvidence
	for _, subject := range taxonomy.Subjects {
		if subject.Label == taxonomy.GeneralAptitude {
			continue
		}
		ev := n.collectEvidence(subject.Label, normalized)
		if ev.explicitIndex != notFound {
			explicit = append(explicit, ev)
		} else if ev.subtopicCount > 0 {
			inferred = append(inferred, ev)
		}
	}

	switch {
	case len(explicit) == 1:
		return explicit[0].label
	case len(explicit) > 1:
		rankExplicit(explicit)
		return explicit[0].label
	case len(inferred) == 1:
		return inferred[0].label
	case len(inferred) > 1:
		rankInferred(inferred)
		return inferred[0].label
	}
	return taxonomy.SubjectUnknown
}

func (n *Normalizer) collectEvidence(subject string, normalizedTags []string) subjectEvidence {
	ev := subjectEvidence{
		label:              subject,
		explicitIndex:      notFound,
		firstSubtopicIndex: notFound,
	}

	aliases := make(map[string]struct{})
	for _, alias := range n.lookup.SubjectAliases[subject] {
		aliases[alias] = struct{}{}
	}
	subtopics := n.lookup.SubtopicsBySubject[subject]

	for i, norm := range normalizedTags {
		if norm == "" {
			continue
		}
		if _, ok := aliases[norm]; ok && i < ev.explicitIndex {
			ev.explicitIndex = i
		}
		if _, ok := subtopics[norm]; ok {
			ev.subtopicCount++
			if i < ev.firstSubtopicIndex {
				ev.firstSubtopicIndex = i
			}
		}
	}
	return ev
}

// rankExplicit orders explicit candidates: earliest explicit tag first,
// then more subtopic hits, then earliest subtopic hit, then the curated
// priority list.
func rankExplicit(candidates []subjectEvidence) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.explicitIndex != b.explicitIndex {
			return a.explicitIndex < b.explicitIndex
		}
		if a.subtopicCount != b.subtopicCount {
			return a.subtopicCount > b.subtopicCount
		}
		if a.firstSubtopicIndex != b.firstSubtopicIndex {
			return a.firstSubtopicIndex < b.firstSubtopicIndex
		}
		return priorityRank(a.label) < priorityRank(b.label)
	})
}

// rankInferred orders subtopic-only candidates: more hits, earliest hit,
// priority list.
func rankInferred(candidates []subjectEvidence) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.subtopicCount != b.subtopicCount {
			return a.subtopicCount > b.subtopicCount
		}
		if a.firstSubtopicIndex != b.firstSubtopicIndex {
			return a.firstSubtopicIndex < b.firstSubtopicIndex
		}
		return priorityRank(a.label) < priorityRank(b.label)
	})
}

var priorityIndex = func() map[string]int {
	idx := make(map[string]int, len(taxonomy.SubjectPriority))
	for i, label := range taxonomy.SubjectPriority {
		idx[label] = i
	}
	return idx
}()

func priorityRank(label string) int {
	if rank, ok := priorityIndex[label]; ok {
		return rank
	}
	return notFound
}
