package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// QuestionType classifies how a question is answered.
type QuestionType string

const (
	TypeMCQ     QuestionType = "MCQ"
	TypeMSQ     QuestionType = "MSQ"
	TypeNAT     QuestionType = "NAT"
	TypeUnknown QuestionType = "unknown"
)

// NormalizeQuestionType folds a free-form type token into the enum.
func NormalizeQuestionType(raw string) QuestionType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "MCQ":
		return TypeMCQ
	case "MSQ":
		return TypeMSQ
	case "NAT":
		return TypeNAT
	default:
		return TypeUnknown
	}
}

// AnswerType tags an AnswerRecord variant.
type AnswerType string

const (
	AnswerMCQ         AnswerType = "MCQ"
	AnswerMSQ         AnswerType = "MSQ"
	AnswerNAT         AnswerType = "NAT"
	AnswerUnsupported AnswerType = "UNSUPPORTED"
	AnswerSubjective  AnswerType = "SUBJECTIVE"
	AnswerAmbiguous   AnswerType = "AMBIGUOUS"
)

// RawQuestion is a question as scraped or stored, untrusted and
// order-significant: tag order encodes specificity.
type RawQuestion struct {
	Title       string   `json:"title"`
	Question    string   `json:"question"`
	Link        string   `json:"link"`
	Tags        []string `json:"tags"`
	Year        string   `json:"year"`
	Type        string   `json:"type,omitempty"`
	QuestionUID string   `json:"question_uid,omitempty"`
	IDStr       string   `json:"id_str,omitempty"`
	Volume      *int     `json:"volume,omitempty"`
	ExamYear    int      `json:"examYear,omitempty"`
	ExamSet     int      `json:"examSet,omitempty"`
	Paper       string   `json:"paper,omitempty"`
}

// ExamMeta identifies the exam sitting a question belongs to.
// Set is 0 when the sitting had a single set. YearSetKey is empty only
// when no year signal exists anywhere.
type ExamMeta struct {
	Paper      string `json:"paper"`
	Year       int    `json:"year"`
	Set        int    `json:"set"`
	YearSetKey string `json:"yearSetKey,omitempty"`
	Label      string `json:"label"`
}

// Subtopic is a canonical subtopic reference under a subject.
type Subtopic struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// CanonicalQuestion is the derived, validated form of a RawQuestion.
// Immutable once computed until re-normalized.
type CanonicalQuestion struct {
	UID         string       `json:"uid"`
	Title       string       `json:"title"`
	Question    string       `json:"question"`
	Link        string       `json:"link"`
	Exam        ExamMeta     `json:"exam"`
	Subject     string       `json:"subject"`
	SubjectSlug string       `json:"subjectSlug"`
	Subtopics   []Subtopic   `json:"subtopics"`
	Type        QuestionType `json:"type"`
	TagsRaw     []string     `json:"tagsRaw"`
	IDStr       string       `json:"id_str,omitempty"`
	Volume      *int         `json:"volume,omitempty"`
}

// Tolerance bounds accepted NAT submissions around the expected value.
type Tolerance struct {
	Abs float64 `json:"abs"`
}

// AnswerValue holds the typed payload of an answer record. Options is
// populated for MCQ/MSQ, Numbers for NAT (one or more accepted values).
type AnswerValue struct {
	Options []string
	Numbers []float64
}

// AnswerRecord joins a question to its verified answer.
type AnswerRecord struct {
	AnswerUID string          `json:"answer_uid,omitempty"`
	Type      AnswerType      `json:"type"`
	Answer    AnswerValue     `json:"answer"`
	Tolerance *Tolerance      `json:"tolerance,omitempty"`
	Source    json.RawMessage `json:"source,omitempty"`
}

// answerRecordJSON mirrors the wire shape, where answer may be a string,
// a number, or an array of either.
type answerRecordJSON struct {
	AnswerUID string          `json:"answer_uid,omitempty"`
	Type      AnswerType      `json:"type"`
	Answer    json.RawMessage `json:"answer"`
	Tolerance *Tolerance      `json:"tolerance,omitempty"`
	Source    json.RawMessage `json:"source,omitempty"`
}

func (r *AnswerRecord) UnmarshalJSON(data []byte) error {
	var wire answerRecordJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.AnswerUID = wire.AnswerUID
	r.Type = AnswerType(strings.ToUpper(strings.TrimSpace(string(wire.Type))))
	r.Tolerance = wire.Tolerance
	r.Source = wire.Source
	r.Answer = decodeAnswerValue(wire.Answer)
	return nil
}

func (r AnswerRecord) MarshalJSON() ([]byte, error) {
	wire := answerRecordJSON{
		AnswerUID: r.AnswerUID,
		Type:      r.Type,
		Tolerance: r.Tolerance,
		Source:    r.Source,
	}
	var payload interface{}
	switch {
	case len(r.Answer.Options) == 1:
		payload = r.Answer.Options[0]
	case len(r.Answer.Options) > 1:
		payload = r.Answer.Options
	case len(r.Answer.Numbers) == 1:
		payload = r.Answer.Numbers[0]
	case len(r.Answer.Numbers) > 1:
		payload = r.Answer.Numbers
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	wire.Answer = raw
	return json.Marshal(wire)
}

// decodeAnswerValue accepts every answer shape seen in the data files:
// "B", ["A","C"], 5, "5.0", [1.5, 2] and sorts it into the typed slots.
func decodeAnswerValue(raw json.RawMessage) AnswerValue {
	var value AnswerValue
	if len(raw) == 0 || string(raw) == "null" {
		return value
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			appendScalar(&value, item)
		}
		return value
	}
	appendScalar(&value, raw)
	return value
}

func appendScalar(value *AnswerValue, raw json.RawMessage) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		value.Numbers = append(value.Numbers, num)
		return
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return
	}
	// Numeric strings ("5.3") show up in NAT records.
	if parsed, err := strconv.ParseFloat(str, 64); err == nil {
		value.Numbers = append(value.Numbers, parsed)
		return
	}
	value.Options = append(value.Options, strings.ToUpper(str))
}

// EvalStatus reports how an answer submission was handled.
type EvalStatus string

const (
	EvalEvaluated    EvalStatus = "evaluated"
	EvalMissing      EvalStatus = "missing_answer"
	EvalInvalidInput EvalStatus = "invalid_input"
	EvalUnsupported  EvalStatus = "unsupported_type"
)

// EvalResult is the outcome of grading one submission.
type EvalResult struct {
	Status  EvalStatus `json:"status"`
	Correct bool       `json:"correct"`
}
