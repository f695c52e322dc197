package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gatebank/internal/domain"
)

// SchemaVersion bumps whenever the taxonomy tables or the lookup layout
// change; cache keys embed it so stale precomputed data self-invalidates.
const SchemaVersion = 2

// Lookup holds the pre-normalized subtopic and subject-alias tables so
// classification never re-runs normalization at runtime. It is generated
// at build time (pipeline precompute stage) and consumed read-only.
type Lookup struct {
	GeneratedAt string `json:"_generatedAt,omitempty"`
	Schema      int    `json:"schemaVersion"`

	// SubtopicsBySubject: subject label → normalized token → subtopic.
	SubtopicsBySubject map[string]map[string]domain.Subtopic `json:"subtopicsBySubject"`
	// NormalizedSubtopicsBySubject keeps the curated vocabulary order.
	NormalizedSubtopicsBySubject map[string][]string `json:"normalizedSubtopicsBySubject"`
	// SubjectAliases: subject label → normalized alias tokens.
	SubjectAliases map[string][]string `json:"subjectAliases"`
}

// BuildLookup derives the lookup tables from the curated hierarchy.
func BuildLookup() *Lookup {
	lookup := &Lookup{
		GeneratedAt:                  time.Now().UTC().Format(time.RFC3339),
		Schema:                       SchemaVersion,
		SubtopicsBySubject:           make(map[string]map[string]domain.Subtopic, len(topicHierarchy)),
		NormalizedSubtopicsBySubject: make(map[string][]string, len(topicHierarchy)),
		SubjectAliases:               make(map[string][]string, len(topicHierarchy)),
	}

	for subject, subtopics := range topicHierarchy {
		table := make(map[string]domain.Subtopic, len(subtopics))
		ordered := make([]string, 0, len(subtopics))
		for _, label := range subtopics {
			norm := NormalizeToken(label)
			if _, exists := table[norm]; exists {
				continue
			}
			ordered = append(ordered, norm)
			table[norm] = domain.Subtopic{Slug: SlugifyToken(label), Label: label}
		}
		lookup.SubtopicsBySubject[subject] = table
		lookup.NormalizedSubtopicsBySubject[subject] = ordered
		lookup.SubjectAliases[subject] = buildSubjectAliases(subject)
	}
	return lookup
}

func buildSubjectAliases(subject string) []string {
	seen := make(map[string]struct{})
	var aliases []string
	add := func(raw string) {
		norm := NormalizeToken(raw)
		if norm == "" {
			return
		}
		if _, ok := seen[norm]; ok {
			return
		}
		seen[norm] = struct{}{}
		aliases = append(aliases, norm)
	}

	add(subject)
	add(replaceAmpersand(subject))
	add(SubjectSlug(subject))
	for _, alias := range subjectAliasOverrides[subject] {
		add(alias)
	}
	return aliases
}

func replaceAmpersand(raw string) string {
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		if r == '&' {
			out = append(out, 'a', 'n', 'd')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}

// LoadLookup reads a precomputed lookup file, rejecting stale schemas.
func LoadLookup(path string) (*Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtopic lookup: %w", err)
	}
	var lookup Lookup
	if err := json.Unmarshal(data, &lookup); err != nil {
		return nil, fmt.Errorf("parse subtopic lookup: %w", err)
	}
	if lookup.Schema != SchemaVersion {
		return nil, fmt.Errorf("subtopic lookup schema %d, want %d (re-run precompute)", lookup.Schema, SchemaVersion)
	}
	return &lookup, nil
}

// Write persists the lookup as indented JSON.
func (l *Lookup) Write(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// IsGeneralAptitudeAlias reports whether a normalized token names the
// General Aptitude subject directly.
func (l *Lookup) IsGeneralAptitudeAlias(norm string) bool {
	for _, alias := range l.SubjectAliases[GeneralAptitude] {
		if alias == norm {
			return true
		}
	}
	return false
}
