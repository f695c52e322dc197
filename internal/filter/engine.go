package filter

import (
	"gatebank/internal/domain"
)

// Progress supplies the per-user flags the solved/bookmarked filters
// need. Implemented by the progress tracker.
type Progress interface {
	IsSolved(uid string) bool
	IsBookmarked(uid string) bool
}

// Apply returns the questions matching the state, preserving input
// order. Pure: it never mutates its inputs and the same inputs always
// give the same output. Subtopic selections are scoped to their parent
// subject: a question from another selected subject is not excluded by
// subtopics it could never carry.
func Apply(questions []domain.CanonicalQuestion, state State, progress Progress) []domain.CanonicalQuestion {
	state = state.Normalize()

	yearSets := toSet(state.YearSets)
	subjects := toSet(state.Subjects)
	types := toSet(state.Types)

	// Selected subtopics grouped under their parent subject slug.
	parents := subtopicParents()
	scoped := make(map[string]map[string]struct{})
	for _, sub := range state.Subtopics {
		parent := parents[sub]
		if scoped[parent] == nil {
			scoped[parent] = make(map[string]struct{})
		}
		scoped[parent][sub] = struct{}{}
	}

	var out []domain.CanonicalQuestion
	for _, q := range questions {
		if len(yearSets) > 0 {
			if _, ok := yearSets[q.Exam.YearSetKey]; !ok {
				continue
			}
		}
		if state.YearFrom != 0 && (q.Exam.Year == 0 || q.Exam.Year < state.YearFrom) {
			continue
		}
		if state.YearTo != 0 && (q.Exam.Year == 0 || q.Exam.Year > state.YearTo) {
			continue
		}
		if len(subjects) > 0 {
			if _, ok := subjects[q.SubjectSlug]; !ok {
				continue
			}
		}
		if wanted, ok := scoped[q.SubjectSlug]; ok {
			if !hasAnySubtopic(q, wanted) {
				continue
			}
		}
		if len(types) > 0 {
			if _, ok := types[string(q.Type)]; !ok {
				continue
			}
		}
		if progress != nil {
			if state.HideSolved && progress.IsSolved(q.UID) {
				continue
			}
			if state.ShowOnlySolved && !progress.IsSolved(q.UID) {
				continue
			}
			if state.ShowOnlyBookmarked && !progress.IsBookmarked(q.UID) {
				continue
			}
		} else if state.ShowOnlySolved || state.ShowOnlyBookmarked {
			continue
		}
		out = append(out, q)
	}
	return out
}

func hasAnySubtopic(q domain.CanonicalQuestion, wanted map[string]struct{}) bool {
	for _, sub := range q.Subtopics {
		if _, ok := wanted[sub.Slug]; ok {
			return true
		}
	}
	return false
}
