package testutil

import (
	"strings"

	"github.com/hupe1980/agentgroup/core"
)

// AgentBuilder helps construct agents with fluent chaining for tests.
// Example:
//
//	a := NewAgentBuilder("coder").Role("Senior Go developer").Model("chat-model").Build()
//
// Agents are enabled globally and locally unless disabled explicitly.
type AgentBuilder struct {
	agent core.Agent
}

// NewAgentBuilder creates a builder for an agent addressed as @key. ID and
// display name are derived from the key.
func NewAgentBuilder(key string) *AgentBuilder {
	display := key
	if key != "" {
		display = strings.ToUpper(key[:1]) + key[1:]
	}
	return &AgentBuilder{agent: core.Agent{
		ID:           "agent-" + key,
		OwnerID:      "owner-1",
		Key:          key,
		DisplayName:  display,
		Enabled:      true,
		LocalEnabled: true,
	}}
}

// ID overrides the derived agent id (chainable).
func (b *AgentBuilder) ID(id string) *AgentBuilder { b.agent.ID = id; return b }

// DisplayName overrides the derived display name (chainable).
func (b *AgentBuilder) DisplayName(n string) *AgentBuilder { b.agent.DisplayName = n; return b }

// Role sets the agent role (chainable).
func (b *AgentBuilder) Role(r string) *AgentBuilder { b.agent.Role = r; return b }

// Model sets the catalog model id (chainable).
func (b *AgentBuilder) Model(m string) *AgentBuilder { b.agent.Model = m; return b }

// SystemPrompt sets a custom system prompt (chainable).
func (b *AgentBuilder) SystemPrompt(p string) *AgentBuilder { b.agent.SystemPrompt = p; return b }

// MaxTokens sets the max output tokens (chainable).
func (b *AgentBuilder) MaxTokens(n int) *AgentBuilder { b.agent.MaxTokens = n; return b }

// Temperature sets the sampling temperature (chainable).
func (b *AgentBuilder) Temperature(t float64) *AgentBuilder { b.agent.Temperature = &t; return b }

// Color sets the display color (chainable).
func (b *AgentBuilder) Color(c string) *AgentBuilder { b.agent.Color = c; return b }

// Disabled clears the global enablement flag (chainable).
func (b *AgentBuilder) Disabled() *AgentBuilder { b.agent.Enabled = false; return b }

// LocallyDisabled clears the group-local enablement flag (chainable).
func (b *AgentBuilder) LocallyDisabled() *AgentBuilder { b.agent.LocalEnabled = false; return b }

// Build returns the agent.
func (b *AgentBuilder) Build() core.Agent { return b.agent }

// Agents builds one default agent per key.
func Agents(keys ...string) []core.Agent {
	out := make([]core.Agent, len(keys))
	for i, k := range keys {
		out[i] = NewAgentBuilder(k).Build()
	}
	return out
}
