package core

import "strings"

const (
	// DefaultMaxTokens is applied when an agent does not configure MaxTokens.
	DefaultMaxTokens = 2000
	// DefaultTemperature is applied when an agent does not configure Temperature.
	DefaultTemperature = 0.7
)

// Agent is a configured persona (model + prompt + parameters) that can
// independently answer a message inside a group.
//
// Lifecycle (create/update/delete) is owned by an external store; the
// orchestrator only reads agents. An agent is eligible for a group when it
// is enabled globally AND enabled locally within that group.
type Agent struct {
	ID           string   `json:"id" yaml:"id"`
	OwnerID      string   `json:"owner_id" yaml:"owner_id"`
	Key          string   `json:"key" yaml:"key"` // Slug used as @-reference
	DisplayName  string   `json:"display_name" yaml:"display_name"`
	Role         string   `json:"role" yaml:"role"`
	Model        string   `json:"model,omitempty" yaml:"model"`                 // Empty falls back to the request's model
	SystemPrompt string   `json:"system_prompt,omitempty" yaml:"system_prompt"` // Empty synthesizes a default from Role
	Color        string   `json:"color,omitempty" yaml:"color"`                 // Presentation only
	MaxTokens    int      `json:"max_tokens,omitempty" yaml:"max_tokens"`
	Temperature  *float64 `json:"temperature,omitempty" yaml:"temperature"`
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	LocalEnabled bool     `json:"local_enabled" yaml:"local_enabled"`
}

// Eligible reports whether the agent is enabled both globally and within its group.
func (a Agent) Eligible() bool { return a.Enabled && a.LocalEnabled }

// MatchesKey reports whether the agent key equals tag (case-insensitive).
func (a Agent) MatchesKey(tag string) bool { return strings.EqualFold(a.Key, tag) }

// OutputTokens returns the configured max output tokens or DefaultMaxTokens.
func (a Agent) OutputTokens() int {
	if a.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return a.MaxTokens
}

// EffectiveTemperature returns the configured temperature or DefaultTemperature.
func (a Agent) EffectiveTemperature() float64 {
	if a.Temperature == nil {
		return DefaultTemperature
	}
	return *a.Temperature
}

// FilterEligible returns the agents that are globally and locally enabled,
// preserving input order.
func FilterEligible(agents []Agent) []Agent {
	out := make([]Agent, 0, len(agents))
	for _, a := range agents {
		if a.Eligible() {
			out = append(out, a)
		}
	}
	return out
}
