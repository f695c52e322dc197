// Package filter implements the practice-view filter model: a
// normalized selection state, a pure matching engine over canonical
// questions, and the URL query codec that keeps the state shareable.
package filter

import (
	"sort"
	"strings"

	"gatebank/internal/canon"
	"gatebank/internal/domain"
	"gatebank/internal/taxonomy"
)

// State is the full filter selection. The zero value selects
// everything. Slices are kept sorted and deduplicated so states compare
// and encode deterministically.
type State struct {
	YearSets  []string `json:"yearSets,omitempty"`
	Subjects  []string `json:"subjects,omitempty"`
	Subtopics []string `json:"subtopics,omitempty"`
	Types     []string `json:"types,omitempty"`

	YearFrom int `json:"yearFrom,omitempty"`
	YearTo   int `json:"yearTo,omitempty"`

	HideSolved         bool `json:"hideSolved,omitempty"`
	ShowOnlySolved     bool `json:"showOnlySolved,omitempty"`
	ShowOnlyBookmarked bool `json:"showOnlyBookmarked,omitempty"`

	// Question pins a single question UID; carried through encoding
	// untouched so deep links survive filter edits.
	Question string `json:"question,omitempty"`
}

// IsEmpty reports whether the state constrains nothing.
func (s State) IsEmpty() bool {
	return len(s.YearSets) == 0 && len(s.Subjects) == 0 && len(s.Subtopics) == 0 &&
		len(s.Types) == 0 && s.YearFrom == 0 && s.YearTo == 0 &&
		!s.HideSolved && !s.ShowOnlySolved && !s.ShowOnlyBookmarked
}

// Normalize drops invalid tokens, dedupes, sorts, and enforces the
// cross-field rules: every selected subtopic has its parent subject
// selected, and hideSolved/showOnlySolved never hold together
// (showOnlySolved wins).
func (s State) Normalize() State {
	out := s

	out.YearSets = normalizeList(s.YearSets, func(token string) (string, bool) {
		token = strings.TrimSpace(token)
		if _, ok := canon.ParseYearSetKey(token); !ok {
			return "", false
		}
		return token, true
	})

	out.Subjects = normalizeList(s.Subjects, func(token string) (string, bool) {
		slug := strings.TrimSpace(strings.ToLower(token))
		if taxonomy.SubjectLabelBySlug(slug) == taxonomy.SubjectUnknown && slug != taxonomy.SubjectUnknownSlug {
			return "", false
		}
		return slug, true
	})

	parents := subtopicParents()
	out.Subtopics = normalizeList(s.Subtopics, func(token string) (string, bool) {
		slug := strings.TrimSpace(strings.ToLower(token))
		if _, ok := parents[slug]; !ok {
			return "", false
		}
		return slug, true
	})

	out.Types = normalizeList(s.Types, func(token string) (string, bool) {
		qt := domain.NormalizeQuestionType(token)
		if qt == domain.TypeUnknown {
			return "", false
		}
		return string(qt), true
	})

	if out.YearFrom > out.YearTo && out.YearTo != 0 {
		out.YearFrom, out.YearTo = out.YearTo, out.YearFrom
	}

	// Subtopic selections imply their parent subject.
	subjectSet := toSet(out.Subjects)
	for _, sub := range out.Subtopics {
		parent := parents[sub]
		if _, ok := subjectSet[parent]; !ok {
			subjectSet[parent] = struct{}{}
			out.Subjects = append(out.Subjects, parent)
		}
	}
	sort.Strings(out.Subjects)

	if out.ShowOnlySolved {
		out.HideSolved = false
	}
	return out
}

// Update replaces the selection with next and re-normalizes. A subject
// that was selected before and is absent from next takes its subtopics
// with it; remaining subtopic selections still pull their parent
// subject back in via Normalize.
func (s State) Update(next State) State {
	dropped := make(map[string]struct{})
	for _, slug := range s.Normalize().Subjects {
		if !contains(next.Subjects, slug) {
			dropped[slug] = struct{}{}
		}
	}

	parents := subtopicParents()
	var kept []string
	for _, sub := range next.Subtopics {
		if _, gone := dropped[parents[strings.TrimSpace(strings.ToLower(sub))]]; gone {
			continue
		}
		kept = append(kept, sub)
	}
	next.Subtopics = kept
	return next.Normalize()
}

// ToggleSubject adds or removes one subject slug. Removing a subject
// also removes its subtopics.
func (s State) ToggleSubject(slug string) State {
	slug = strings.TrimSpace(strings.ToLower(slug))
	next := s
	if contains(s.Subjects, slug) {
		next.Subjects = remove(s.Subjects, slug)
		parents := subtopicParents()
		next.Subtopics = normalizeList(s.Subtopics, func(token string) (string, bool) {
			if parents[token] == slug {
				return "", false
			}
			return token, true
		})
		return next.Normalize()
	}
	next.Subjects = append(append([]string(nil), s.Subjects...), slug)
	return next.Normalize()
}

// ToggleSubtopic adds or removes one subtopic slug. Adding pulls in the
// parent subject.
func (s State) ToggleSubtopic(slug string) State {
	slug = strings.TrimSpace(strings.ToLower(slug))
	next := s
	if contains(s.Subtopics, slug) {
		next.Subtopics = remove(s.Subtopics, slug)
	} else {
		next.Subtopics = append(append([]string(nil), s.Subtopics...), slug)
	}
	return next.Normalize()
}

// SetSolvedMode switches between the mutually-exclusive solved views.
func (s State) SetSolvedMode(hideSolved, showOnlySolved bool) State {
	next := s
	next.HideSolved = hideSolved
	next.ShowOnlySolved = showOnlySolved
	return next.Normalize()
}

// subtopicParents maps every known subtopic slug to its subject slug.
func subtopicParents() map[string]string {
	parents := make(map[string]string)
	for _, subject := range taxonomy.Subjects {
		for _, label := range taxonomy.Subtopics(subject.Label) {
			parents[taxonomy.SlugifyToken(label)] = subject.Slug
		}
	}
	return parents
}

func normalizeList(values []string, accept func(string) (string, bool)) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		token, ok := accept(value)
		if !ok {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func remove(values []string, target string) []string {
	var out []string
	for _, value := range values {
		if value != target {
			out = append(out, value)
		}
	}
	return out
}
