package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gatebank/internal/domain"
	"gatebank/internal/taxonomy"
)

// Audit CSV reports. Each function returns rows without the header;
// WriteCSV adds it. The reports are inputs to manual tag cleanup on
// the forum data, not runtime artifacts.

// CountsBySubject tallies questions per canonical subject.
func CountsBySubject(questions []domain.CanonicalQuestion) [][]string {
	counts := make(map[string]int)
	for _, q := range questions {
		counts[q.Subject]++
	}
	return sortedCountRows(counts)
}

// CountsByYearSet tallies questions per exam sitting. Questions with
// no exam signal land in the empty bucket.
func CountsByYearSet(questions []domain.CanonicalQuestion) [][]string {
	counts := make(map[string]int)
	for _, q := range questions {
		counts[q.Exam.YearSetKey]++
	}
	return sortedCountRows(counts)
}

// UnknownSubjects lists every question that resolved to no subject,
// with its tags, so the vocabulary tables can be extended.
func UnknownSubjects(questions []domain.CanonicalQuestion) [][]string {
	var rows [][]string
	for _, q := range questions {
		if q.SubjectSlug == taxonomy.SubjectUnknownSlug {
			rows = append(rows, []string{q.UID, q.Title, strings.Join(q.TagsRaw, "|")})
		}
	}
	return rows
}

// SubjectConflicts lists questions tagged with more than one explicit
// subject; resolution picked the first, the report flags the rest for
// review.
func SubjectConflicts(questions []domain.CanonicalQuestion, lookup *taxonomy.Lookup) [][]string {
	aliasToSubject := make(map[string]string)
	for subject, aliases := range lookup.SubjectAliases {
		for _, alias := range aliases {
			aliasToSubject[alias] = subject
		}
	}

	var rows [][]string
	for _, q := range questions {
		found := make(map[string]struct{})
		var order []string
		for _, tag := range q.TagsRaw {
			subject, ok := aliasToSubject[taxonomy.NormalizeToken(tag)]
			if !ok {
				continue
			}
			if _, dup := found[subject]; !dup {
				found[subject] = struct{}{}
				order = append(order, subject)
			}
		}
		if len(order) > 1 {
			rows = append(rows, []string{q.UID, q.Subject, strings.Join(order, "|")})
		}
	}
	return rows
}

// SubtopicLeakage lists questions whose assigned subtopic does not
// belong to their assigned subject. The classifier is supposed to make
// this impossible; a non-empty report means the hierarchy tables and
// the classifier disagree.
func SubtopicLeakage(questions []domain.CanonicalQuestion) [][]string {
	valid := make(map[string]map[string]struct{})
	for _, subject := range taxonomy.Subjects {
		set := make(map[string]struct{})
		for _, label := range taxonomy.Subtopics(subject.Label) {
			set[taxonomy.SlugifyToken(label)] = struct{}{}
		}
		valid[subject.Label] = set
	}

	var rows [][]string
	for _, q := range questions {
		set := valid[q.Subject]
		for _, sub := range q.Subtopics {
			if _, ok := set[sub.Slug]; !ok {
				rows = append(rows, []string{q.UID, q.Subject, sub.Slug})
			}
		}
	}
	return rows
}

// WriteCSV writes one report with its header row.
func WriteCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audit report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write audit header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write audit rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

func sortedCountRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, strconv.Itoa(counts[key])})
	}
	return rows
}
