package bank

import (
	"gatebank/internal/answers"
	"gatebank/internal/domain"
)

// Candidate is one ranked question source. Rank order is the tiebreak:
// earlier candidates are trusted more when coverage is equal.
type Candidate struct {
	Name      string
	Questions []domain.RawQuestion
}

// SourceScore reports how well a candidate joins against the answer
// store.
type SourceScore struct {
	Name     string  `json:"name"`
	Total    int     `json:"total"`
	Answered int     `json:"answered"`
	Coverage float64 `json:"coverage"`
}

// PickBest chooses the candidate whose questions join best against the
// answer store. A pure function over its inputs: same candidates and
// store always give the same pick. Returns domain.ErrNoSource when no
// candidate has any questions.
func PickBest(candidates []Candidate, store *answers.Store, normalize func(domain.RawQuestion) domain.CanonicalQuestion) (Candidate, []SourceScore, error) {
	scores := make([]SourceScore, 0, len(candidates))
	best := -1

	for i, candidate := range candidates {
		score := SourceScore{Name: candidate.Name, Total: len(candidate.Questions)}
		for _, raw := range candidate.Questions {
			identity := answers.ResolveIdentity(normalize(raw))
			if record := store.Lookup(identity); record != nil && record.Type != domain.AnswerUnsupported {
				score.Answered++
			}
		}
		if score.Total > 0 {
			score.Coverage = float64(score.Answered) / float64(score.Total)
		}
		scores = append(scores, score)

		if score.Total == 0 {
			continue
		}
		// Strictly-greater keeps the earlier (higher-ranked) candidate
		// on ties.
		if best == -1 || score.Coverage > scores[best].Coverage {
			best = i
		}
	}

	if best == -1 {
		return Candidate{}, scores, domain.ErrNoSource
	}
	return candidates[best], scores, nil
}
