package canon

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"

	"gatebank/internal/domain"
)

const (
	forumUIDPrefix = "go:"
	localUIDPrefix = "local:"
)

var (
	absoluteForumLink = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?gateoverflow\.in/(\d+)(?:[/?#]|$)`)
	relativeForumLink = regexp.MustCompile(`^/?(\d+)(?:[/?#]|$)`)
)

// ExtractForumID pulls the numeric forum question ID out of a question
// link, absolute or relative. Returns "" when the link has no ID.
func ExtractForumID(link string) string {
	raw := strings.TrimSpace(link)
	if raw == "" {
		return ""
	}
	if m := absoluteForumLink.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if m := relativeForumLink.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

// BuildQuestionUID returns a stable identity for a question: an existing
// UID is never overwritten, a forum-assigned ID is preferred, and a
// content hash is the last resort so every record has a non-empty UID.
func BuildQuestionUID(q domain.RawQuestion) string {
	if uid := strings.TrimSpace(q.QuestionUID); uid != "" {
		return uid
	}
	if id := ExtractForumID(q.Link); id != "" {
		return forumUIDPrefix + id
	}
	sum := sha1.Sum([]byte(q.Title + "\x00" + q.Link + "\x00" + q.Question))
	return localUIDPrefix + hex.EncodeToString(sum[:6])
}

// IsLocalUID reports whether a UID is a locally-hashed placeholder rather
// than a forum-assigned identity.
func IsLocalUID(uid string) bool {
	return strings.HasPrefix(uid, localUIDPrefix)
}
