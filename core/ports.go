package core

import "context"

// AgentStore resolves the agents of a group. Implementations must return
// agents that are globally AND locally enabled, ordered by the time they
// joined the group, and an error wrapping ErrGroupNotFound when the group
// cannot be resolved for the user.
type AgentStore interface {
	EligibleAgents(ctx context.Context, groupID, userID string) ([]Agent, error)
}

// ResponseCache stores prior agent outputs keyed by agent, message and
// effective system prompt. Implementations must be safe for concurrent use.
// Misses, privacy exclusions and backend failures all surface as a miss.
type ResponseCache interface {
	Get(ctx context.Context, agentID, message, systemPrompt string) (string, bool)
	Set(ctx context.Context, agentID, message, systemPrompt, response string)
	// Sweep removes expired entries and returns how many were removed.
	Sweep(ctx context.Context) int
}
