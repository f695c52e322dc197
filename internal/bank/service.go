package bank

import (
	"sort"

	"gatebank/internal/domain"
	"gatebank/internal/taxonomy"
)

// TagCount pairs a raw tag with how many questions carry it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// FacetCount is one bucket of a facet summary.
type FacetCount struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Count int    `json:"count"`
}

// Facets summarizes the bank along the filterable axes.
type Facets struct {
	Subjects  []FacetCount `json:"subjects"`
	Subtopics []FacetCount `json:"subtopics"`
	YearSets  []FacetCount `json:"yearSets"`
	Types     []FacetCount `json:"types"`
	MinYear   int          `json:"minYear"`
	MaxYear   int          `json:"maxYear"`
}

// Service is the read model over one loaded bank. Built once from a
// slice of canonical questions; all views are precomputed and
// goroutine-safe to read.
type Service struct {
	questions []domain.CanonicalQuestion
	byUID     map[string]domain.CanonicalQuestion
	tagCounts map[string]int
	tags      []TagCount
	facets    Facets
}

// NewService validates and indexes a question set. Returns
// domain.ErrBankInvalid for an empty set.
func NewService(questions []domain.CanonicalQuestion) (*Service, error) {
	if len(questions) == 0 {
		return nil, domain.ErrBankInvalid
	}

	s := &Service{
		byUID:     make(map[string]domain.CanonicalQuestion, len(questions)),
		tagCounts: make(map[string]int),
	}

	// Dedupe by UID, first occurrence wins.
	for _, q := range questions {
		if q.UID == "" {
			continue
		}
		if _, seen := s.byUID[q.UID]; seen {
			continue
		}
		s.byUID[q.UID] = q
		s.questions = append(s.questions, q)
		for _, tag := range q.TagsRaw {
			s.tagCounts[tag]++
		}
	}
	if len(s.questions) == 0 {
		return nil, domain.ErrBankInvalid
	}

	s.tags = make([]TagCount, 0, len(s.tagCounts))
	for tag, count := range s.tagCounts {
		s.tags = append(s.tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(s.tags, func(i, j int) bool {
		if s.tags[i].Count != s.tags[j].Count {
			return s.tags[i].Count > s.tags[j].Count
		}
		return s.tags[i].Tag < s.tags[j].Tag
	})

	s.facets = buildFacets(s.questions)
	return s, nil
}

// Questions returns the deduplicated question list in source order.
// Callers must not mutate the returned slice.
func (s *Service) Questions() []domain.CanonicalQuestion {
	return s.questions
}

// Len reports the number of questions in the bank.
func (s *Service) Len() int {
	return len(s.questions)
}

// GetByUID returns one question or domain.ErrQuestionNotFound.
func (s *Service) GetByUID(uid string) (domain.CanonicalQuestion, error) {
	q, ok := s.byUID[uid]
	if !ok {
		return domain.CanonicalQuestion{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

// Tags returns raw tags ordered by frequency, then alphabetically.
func (s *Service) Tags() []TagCount {
	return s.tags
}

// TagCountFor returns how many questions carry the given raw tag.
func (s *Service) TagCountFor(tag string) int {
	return s.tagCounts[tag]
}

// Facets returns the precomputed facet summary.
func (s *Service) Facets() Facets {
	return s.facets
}

func buildFacets(questions []domain.CanonicalQuestion) Facets {
	subjectCounts := make(map[string]int)
	subtopicCounts := make(map[string]FacetCount)
	yearSetCounts := make(map[string]int)
	typeCounts := make(map[string]int)
	minYear, maxYear := 0, 0

	for _, q := range questions {
		subjectCounts[q.SubjectSlug]++
		for _, sub := range q.Subtopics {
			entry := subtopicCounts[sub.Slug]
			entry.Key = sub.Slug
			entry.Label = sub.Label
			entry.Count++
			subtopicCounts[sub.Slug] = entry
		}
		if q.Exam.YearSetKey != "" {
			yearSetCounts[q.Exam.YearSetKey]++
			if minYear == 0 || q.Exam.Year < minYear {
				minYear = q.Exam.Year
			}
			if q.Exam.Year > maxYear {
				maxYear = q.Exam.Year
			}
		}
		typeCounts[string(q.Type)]++
	}

	facets := Facets{MinYear: minYear, MaxYear: maxYear}
	for slug, count := range subjectCounts {
		facets.Subjects = append(facets.Subjects, FacetCount{
			Key:   slug,
			Label: taxonomy.SubjectLabelBySlug(slug),
			Count: count,
		})
	}
	sort.Slice(facets.Subjects, func(i, j int) bool {
		return facets.Subjects[i].Key < facets.Subjects[j].Key
	})

	for _, entry := range subtopicCounts {
		facets.Subtopics = append(facets.Subtopics, entry)
	}
	sort.Slice(facets.Subtopics, func(i, j int) bool {
		return facets.Subtopics[i].Key < facets.Subtopics[j].Key
	})

	for key, count := range yearSetCounts {
		facets.YearSets = append(facets.YearSets, FacetCount{Key: key, Count: count})
	}
	sort.Slice(facets.YearSets, func(i, j int) bool {
		return facets.YearSets[i].Key < facets.YearSets[j].Key
	})

	for key, count := range typeCounts {
		facets.Types = append(facets.Types, FacetCount{Key: key, Count: count})
	}
	sort.Slice(facets.Types, func(i, j int) bool {
		return facets.Types[i].Key < facets.Types[j].Key
	})

	return facets
}
