package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names. Lists are comma-separated; booleans encode as
// "1" and are omitted when false.
const (
	paramYears      = "years"
	paramSubjects   = "subjects"
	paramSubtopics  = "subtopics"
	paramTypes      = "types"
	paramRange      = "range"
	paramHideSolved = "hideSolved"
	paramOnlySolved = "showOnlySolved"
	paramBookmarked = "showOnlyBookmarked"
	paramQuestion   = "question"
)

// EncodeQuery serializes a state into URL query values. The state is
// normalized first so equal selections always encode identically.
func EncodeQuery(state State) url.Values {
	state = state.Normalize()
	values := url.Values{}

	setList(values, paramYears, state.YearSets)
	setList(values, paramSubjects, state.Subjects)
	setList(values, paramSubtopics, state.Subtopics)
	setList(values, paramTypes, state.Types)

	if state.YearFrom != 0 || state.YearTo != 0 {
		values.Set(paramRange, fmt.Sprintf("%d-%d", state.YearFrom, state.YearTo))
	}
	if state.HideSolved {
		values.Set(paramHideSolved, "1")
	}
	if state.ShowOnlySolved {
		values.Set(paramOnlySolved, "1")
	}
	if state.ShowOnlyBookmarked {
		values.Set(paramBookmarked, "1")
	}
	if state.Question != "" {
		values.Set(paramQuestion, state.Question)
	}
	return values
}

// DecodeQuery parses URL query values into a normalized state. Unknown
// parameters and invalid tokens are ignored rather than rejected:
// shared links must keep working after taxonomy changes.
func DecodeQuery(values url.Values) State {
	state := State{
		YearSets:           splitList(values.Get(paramYears)),
		Subjects:           splitList(values.Get(paramSubjects)),
		Subtopics:          splitList(values.Get(paramSubtopics)),
		Types:              splitList(values.Get(paramTypes)),
		HideSolved:         values.Get(paramHideSolved) == "1",
		ShowOnlySolved:     values.Get(paramOnlySolved) == "1",
		ShowOnlyBookmarked: values.Get(paramBookmarked) == "1",
		Question:           values.Get(paramQuestion),
	}

	if raw := values.Get(paramRange); raw != "" {
		if from, to, ok := parseRange(raw); ok {
			state.YearFrom, state.YearTo = from, to
		}
	}
	return state.Normalize()
}

func parseRange(raw string) (int, int, bool) {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	from, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	to, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return from, to, true
}

func setList(values url.Values, key string, list []string) {
	if len(list) > 0 {
		values.Set(key, strings.Join(list, ","))
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
