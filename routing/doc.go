// Package routing decides which agents of a group receive a message.
//
// ParseTags extracts @-references from free text, SelectCandidates narrows
// the group's eligible agents to the referenced ones (or keeps all of them
// for a broadcast) and Prioritize reorders broadcast candidates with a
// pluggable Scorer so that the budget planner admits the most relevant and
// cheapest agents first.
package routing
