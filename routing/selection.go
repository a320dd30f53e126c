package routing

import (
	"github.com/hupe1980/agentgroup/core"
)

// Selection is the outcome of matching parsed tags against eligible agents.
type Selection struct {
	Tags       []string     // Parsed tags; empty for a broadcast
	Candidates []core.Agent // Matching agents in eligible (join) order
	Unknown    []string     // Tags that matched no eligible agent
}

// Broadcast reports whether no tags were given.
func (s Selection) Broadcast() bool { return len(s.Tags) == 0 }

// Mismatch reports whether tags were given but none matched.
func (s Selection) Mismatch() bool { return len(s.Tags) > 0 && len(s.Candidates) == 0 }

// SelectCandidates narrows eligible agents to the ones referenced by tags.
// With no tags every eligible agent is a candidate.
func SelectCandidates(eligible []core.Agent, tags []string) Selection {
	sel := Selection{Tags: tags}
	if len(tags) == 0 {
		sel.Candidates = append([]core.Agent(nil), eligible...)
		return sel
	}
	matched := make(map[string]bool, len(tags))
	for _, a := range eligible {
		for _, t := range tags {
			if a.MatchesKey(t) {
				sel.Candidates = append(sel.Candidates, a)
				matched[t] = true
				break
			}
		}
	}
	for _, t := range tags {
		if !matched[t] {
			sel.Unknown = append(sel.Unknown, t)
		}
	}
	return sel
}

// AgentKeys returns the keys of agents as a list of tags.
func AgentKeys(agents []core.Agent) []string {
	keys := make([]string, len(agents))
	for i, a := range agents {
		keys[i] = a.Key
	}
	return keys
}
