// Package answers loads the answer-record stores and grades submissions
// against them.
package answers

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gatebank/internal/domain"
)

// Paths names the four answer-store files. Empty entries are skipped:
// the stores are independently maintained and any subset may be present.
type Paths struct {
	ByQuestionUID string
	Master        string
	ByExamUID     string
	Unsupported   string
}

// Store holds the answer records, keyed by three join strategies plus
// the unsupported-question registry. Loaded once, read-only thereafter.
type Store struct {
	byQuestionUID map[string]domain.AnswerRecord
	byUID         map[string]domain.AnswerRecord
	byExamUID     map[string]domain.AnswerRecord
	unsupported   map[string]struct{}
}

// NewStore returns an empty store; useful for tests and for banks
// served without answer data.
func NewStore() *Store {
	return &Store{
		byQuestionUID: make(map[string]domain.AnswerRecord),
		byUID:         make(map[string]domain.AnswerRecord),
		byExamUID:     make(map[string]domain.AnswerRecord),
		unsupported:   make(map[string]struct{}),
	}
}

// Load reads every configured store file. Missing files are tolerated;
// malformed JSON is not.
func Load(paths Paths) (*Store, error) {
	s := NewStore()

	if paths.ByQuestionUID != "" {
		payload, err := readOptionalJSON(paths.ByQuestionUID)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			records, err := decodeRecordMap(payload, "records_by_question_uid")
			if err != nil {
				return nil, fmt.Errorf("%s: %w", paths.ByQuestionUID, err)
			}
			s.byQuestionUID = records
		}
	}

	if paths.Master != "" {
		payload, err := readOptionalJSON(paths.Master)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			if err := s.loadMaster(payload); err != nil {
				return nil, fmt.Errorf("%s: %w", paths.Master, err)
			}
		}
	}

	if paths.ByExamUID != "" {
		payload, err := readOptionalJSON(paths.ByExamUID)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			records, err := decodeRecordMap(payload, "records_by_exam_uid")
			if err != nil {
				return nil, fmt.Errorf("%s: %w", paths.ByExamUID, err)
			}
			s.byExamUID = records
		}
	}

	if paths.Unsupported != "" {
		payload, err := readOptionalJSON(paths.Unsupported)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			if err := s.loadUnsupported(payload); err != nil {
				return nil, fmt.Errorf("%s: %w", paths.Unsupported, err)
			}
		}
	}

	return s, nil
}

func readOptionalJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read answer store: %w", err)
	}
	return data, nil
}

// decodeRecordMap accepts both the enveloped form
// {"records_by_x": {...}} and a bare uid→record object.
func decodeRecordMap(data []byte, envelopeKey string) (map[string]domain.AnswerRecord, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	body := data
	if inner, ok := envelope[envelopeKey]; ok {
		body = inner
	}
	records := make(map[string]domain.AnswerRecord)
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// masterEntry carries the extra question_uid field present in the
// legacy master store.
type masterEntry struct {
	QuestionUID string `json:"question_uid"`
}

func (s *Store) loadMaster(data []byte) error {
	var envelope struct {
		RecordsByUID map[string]json.RawMessage `json:"records_by_uid"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	for uid, raw := range envelope.RecordsByUID {
		var record domain.AnswerRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return fmt.Errorf("master record %q: %w", uid, err)
		}
		if record.AnswerUID == "" {
			record.AnswerUID = uid
		}
		s.byUID[uid] = record

		// Backfill the primary map so master-only records are still
		// reachable through the preferred join key.
		var entry masterEntry
		_ = json.Unmarshal(raw, &entry)
		if entry.QuestionUID != "" {
			if _, exists := s.byQuestionUID[entry.QuestionUID]; !exists {
				s.byQuestionUID[entry.QuestionUID] = record
			}
		}
	}
	return nil
}

func (s *Store) loadUnsupported(data []byte) error {
	var envelope struct {
		QuestionUIDs []string `json:"question_uids"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	for _, uid := range envelope.QuestionUIDs {
		uid = strings.TrimSpace(uid)
		if uid != "" {
			s.unsupported[uid] = struct{}{}
		}
	}
	return nil
}

// AddRecord registers a record under a question UID (tests, pipeline).
func (s *Store) AddRecord(questionUID string, record domain.AnswerRecord) {
	s.byQuestionUID[questionUID] = record
}

// AddExamRecord registers a record under an exam UID.
func (s *Store) AddExamRecord(examUID string, record domain.AnswerRecord) {
	s.byExamUID[examUID] = record
}

// AddMasterRecord registers a record under a legacy answer UID.
func (s *Store) AddMasterRecord(answerUID string, record domain.AnswerRecord) {
	s.byUID[answerUID] = record
}

// MarkUnsupported records a question UID in the unsupported registry.
func (s *Store) MarkUnsupported(questionUID string) {
	s.unsupported[questionUID] = struct{}{}
}

// HasQuestionUID reports whether the primary store has a record for the
// given question UID (used for join-coverage scoring, not grading).
func (s *Store) HasQuestionUID(uid string) bool {
	_, ok := s.byQuestionUID[uid]
	return ok
}

// Len reports how many records the primary store holds.
func (s *Store) Len() int {
	return len(s.byQuestionUID)
}

// Lookup returns the answer record for a resolved identity, trying
// question UID, then legacy answer UID, then exam UID, then the
// unsupported registry, in that order. Nil means "no answer record",
// never an error.
func (s *Store) Lookup(identity Identity) *domain.AnswerRecord {
	if identity.QuestionUID != "" {
		if record, ok := s.byQuestionUID[identity.QuestionUID]; ok {
			return &record
		}
	}
	if identity.AnswerUID != "" {
		if record, ok := s.byUID[identity.AnswerUID]; ok {
			return &record
		}
	}
	if identity.ExamUID != "" {
		if record, ok := s.byExamUID[identity.ExamUID]; ok {
			return &record
		}
	}
	for _, candidate := range []string{identity.QuestionUID, identity.RawQuestionUID} {
		if candidate == "" {
			continue
		}
		if _, ok := s.unsupported[candidate]; ok {
			return &domain.AnswerRecord{
				AnswerUID: "unsupported:" + candidate,
				Type:      domain.AnswerUnsupported,
			}
		}
	}
	return nil
}

// LookupQuestion resolves identity and looks up in one step.
func (s *Store) LookupQuestion(q domain.CanonicalQuestion) *domain.AnswerRecord {
	return s.Lookup(ResolveIdentity(q))
}
