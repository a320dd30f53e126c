package routing

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`@([a-zA-Z0-9_-]+)`)

// ParseTags returns the unique, lower-cased identifiers that follow an '@'
// in text, in order of first appearance. An empty result means the message
// is a broadcast to every eligible agent.
func ParseTags(text string) []string {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// FormatTags renders tags as a comma separated list of @-references.
func FormatTags(tags []string) string {
	refs := make([]string, len(tags))
	for i, t := range tags {
		refs[i] = "@" + t
	}
	return strings.Join(refs, ", ")
}
