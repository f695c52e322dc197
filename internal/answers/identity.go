package answers

import (
	"fmt"
	"strings"

	"gatebank/internal/canon"
	"gatebank/internal/domain"
)

// Identity is the set of candidate join keys for one question across the
// independently-maintained answer stores.
type Identity struct {
	RawQuestionUID string `json:"rawQuestionUid,omitempty"`
	QuestionUID    string `json:"questionUid,omitempty"`
	AnswerUID      string `json:"answerUid,omitempty"`
	ExamUID        string `json:"examUid,omitempty"`
	StorageUID     string `json:"storageUid,omitempty"`
	HasIdentity    bool   `json:"hasIdentity"`
	Reason         string `json:"reason"`
}

// ResolveIdentity computes the three candidate keys and the storage key.
// StorageUID ordering reflects trust: forum-assigned IDs are the most
// reliable. Never fails; HasIdentity=false signals "cannot grade".
func ResolveIdentity(q domain.CanonicalQuestion) Identity {
	rawUID := strings.TrimSpace(q.UID)

	questionUID := ""
	if rawUID != "" && !canon.IsLocalUID(rawUID) {
		questionUID = rawUID
	} else if id := canon.ExtractForumID(q.Link); id != "" {
		questionUID = "go:" + id
	}

	answerUID := ""
	if q.Volume != nil && strings.TrimSpace(q.IDStr) != "" {
		answerUID = fmt.Sprintf("v%d:%s", *q.Volume, q.IDStr)
	}

	examUID := canon.BuildExamUID(q.Exam, q.Title)

	identity := Identity{
		RawQuestionUID: rawUID,
		QuestionUID:    questionUID,
		AnswerUID:      answerUID,
		ExamUID:        examUID,
	}
	identity.HasIdentity = questionUID != "" || answerUID != "" || examUID != ""
	identity.Reason = "missing_join_keys"
	if identity.HasIdentity {
		identity.Reason = "ok"
	}

	for _, candidate := range []string{questionUID, answerUID, examUID, rawUID} {
		if candidate != "" {
			identity.StorageUID = candidate
			break
		}
	}
	return identity
}
