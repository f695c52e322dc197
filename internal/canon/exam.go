package canon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gatebank/internal/domain"
)

const (
	minValidYear = 1990
	maxValidYear = 2100

	defaultPaper = "CSE"
)

// Confidence scores per exam-metadata source. Selection keeps the
// highest score; iteration order (explicit > year field > tag > title >
// link) breaks ties, never recency or magnitude.
const (
	confExplicit  = 100
	confYearField = 90
	confTag       = 80
	confTitle     = 70
	confLink      = 55
)

var (
	// Tag spellings drift between years: gatecse-2024-set1, gatecse2025-set1.
	yearSetTagPattern   = regexp.MustCompile(`(?i)gate(?:cse|it)?-?(\d{4})(?:-?set-?(\d+))?`)
	yearSetTitlePattern = regexp.MustCompile(`(?i)gate\s*(?:cse|it)?\s*(\d{4})(?:\s*[|,–-]?\s*set\s*-?\s*(\d+))?`)
	yearSetLinkPattern  = regexp.MustCompile(`(?i)gate(?:-[a-z]+)*?-(\d{4})(?:-set-?(\d+))?`)
	yearSetKeyPattern   = regexp.MustCompile(`^(\d{4})-s(\d+)$`)

	titleQuestionNumber = regexp.MustCompile(`(?i)question\s*:?\s*((?:ga[-\s]?)?\d+)`)
)

// YearSet is a (year, set) candidate extracted from one source.
type YearSet struct {
	Year int
	Set  int
}

func validYear(year int) bool {
	return year >= minValidYear && year <= maxValidYear
}

// ExtractYearSetFromTag parses exam tags like "gatecse-2024-set1".
func ExtractYearSetFromTag(tag string) (YearSet, bool) {
	return matchYearSet(yearSetTagPattern, tag)
}

func matchYearSet(pattern *regexp.Regexp, raw string) (YearSet, bool) {
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return YearSet{}, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || !validYear(year) {
		return YearSet{}, false
	}
	set := 0
	if m[2] != "" {
		set, _ = strconv.Atoi(m[2])
	}
	return YearSet{Year: year, Set: set}, true
}

// BuildYearSetKey formats the unique per-sitting key "<year>-s<set-or-0>".
// Returns "" for years outside the valid window.
func BuildYearSetKey(year, set int) string {
	if !validYear(year) {
		return ""
	}
	if set < 0 {
		set = 0
	}
	return fmt.Sprintf("%d-s%d", year, set)
}

// ParseYearSetKey inverts BuildYearSetKey.
func ParseYearSetKey(key string) (YearSet, bool) {
	m := yearSetKeyPattern.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return YearSet{}, false
	}
	year, _ := strconv.Atoi(m[1])
	if !validYear(year) {
		return YearSet{}, false
	}
	set, _ := strconv.Atoi(m[2])
	return YearSet{Year: year, Set: set}, true
}

type examCandidate struct {
	yearSet    YearSet
	confidence int
}

// ExtractExamMeta resolves (year, set) from up to five independent and
// possibly conflicting sources, ranked by fixed confidence.
func ExtractExamMeta(q domain.RawQuestion) domain.ExamMeta {
	var candidates []examCandidate

	if validYear(q.ExamYear) {
		candidates = append(candidates, examCandidate{YearSet{q.ExamYear, q.ExamSet}, confExplicit})
	}
	if ys, ok := ExtractYearSetFromTag(q.Year); ok {
		candidates = append(candidates, examCandidate{ys, confYearField})
	}
	for _, tag := range q.Tags {
		if ys, ok := ExtractYearSetFromTag(tag); ok {
			candidates = append(candidates, examCandidate{ys, confTag})
			break
		}
	}
	if ys, ok := matchYearSet(yearSetTitlePattern, q.Title); ok {
		candidates = append(candidates, examCandidate{ys, confTitle})
	}
	if ys, ok := matchYearSet(yearSetLinkPattern, q.Link); ok {
		candidates = append(candidates, examCandidate{ys, confLink})
	}

	paper := strings.TrimSpace(q.Paper)
	if paper == "" {
		paper = defaultPaper
	}

	best := examCandidate{confidence: -1}
	for _, c := range candidates {
		// Strict greater-than keeps the earlier (higher-priority) source on ties.
		if c.confidence > best.confidence {
			best = c
		}
	}
	if best.confidence < 0 {
		return domain.ExamMeta{Paper: paper, Label: "Unknown"}
	}

	meta := domain.ExamMeta{
		Paper:      paper,
		Year:       best.yearSet.Year,
		Set:        best.yearSet.Set,
		YearSetKey: BuildYearSetKey(best.yearSet.Year, best.yearSet.Set),
	}
	meta.Label = yearSetLabel(meta.Year, meta.Set)
	return meta
}

func yearSetLabel(year, set int) string {
	if set > 0 {
		return fmt.Sprintf("%d Set %d", year, set)
	}
	return strconv.Itoa(year)
}

// BuildExamUID derives the exam-scoped join key
// "exam:<yearSetKey>:q<number>". The question number (including a GA
// prefix) comes from the title; "" when either part is missing.
func BuildExamUID(meta domain.ExamMeta, title string) string {
	if meta.YearSetKey == "" {
		return ""
	}
	m := titleQuestionNumber.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	number := strings.ToLower(m[1])
	number = strings.ReplaceAll(number, " ", "-")
	if strings.HasPrefix(number, "ga") && !strings.HasPrefix(number, "ga-") {
		number = "ga-" + strings.TrimPrefix(number, "ga")
	}
	return "exam:" + meta.YearSetKey + ":q" + number
}
