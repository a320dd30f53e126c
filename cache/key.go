package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultSensitiveKeywords disable caching for any message containing them.
var DefaultSensitiveKeywords = []string{"password", "secret", "private", "confidential", "personal"}

// Key derives the cache key for an (agent, message, prompt) triple. The
// message is normalized first so whitespace and case differences share an
// entry. Distinct triples are not guaranteed to map to distinct keys, but a
// SHA-256 collision is not a practical concern here.
func Key(agentID, message, systemPrompt string) string {
	h := sha256.New()
	h.Write([]byte(agentID))
	h.Write([]byte{0})
	h.Write([]byte(NormalizeMessage(message)))
	h.Write([]byte{0})
	h.Write([]byte(systemPrompt))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeMessage lower-cases message and collapses whitespace runs.
func NormalizeMessage(message string) string {
	return strings.Join(strings.Fields(strings.ToLower(message)), " ")
}

// ContainsSensitive reports whether message mentions one of keywords
// (case-insensitive).
func ContainsSensitive(message string, keywords []string) bool {
	lower := strings.ToLower(message)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ShouldCache reports whether responses to message may be cached under the
// default keyword list.
func ShouldCache(message string) bool {
	return !ContainsSensitive(message, DefaultSensitiveKeywords)
}
