// Package prompt builds the effective system prompt of an agent.
//
// A custom agent prompt is used verbatim (optionally prefixed with the
// agent's role). Agents without one get a short default synthesized from
// their role and the caller's request hints.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/internal/util"
)

// DefaultTemplate is rendered for agents without a custom system prompt.
const DefaultTemplate = `You are {{default "a helpful assistant" (trim .Role)}}. Keep your responses concise and helpful.
{{- if or .Hints.City .Hints.Country}}

About the origin of user's request:
- lat: {{.Hints.Latitude}}
- lon: {{.Hints.Longitude}}
- city: {{.Hints.City}}
- country: {{.Hints.Country}}
{{- end}}`

// Options configure a Builder.
type Options struct {
	// Template overrides DefaultTemplate. It receives Data.
	Template string
	// PrefixRole prefixes custom prompts with "Role: <role>".
	PrefixRole bool
}

// Data is the template input.
type Data struct {
	Role        string
	DisplayName string
	Key         string
	Hints       core.RequestHints
}

// Builder renders effective system prompts. It is safe for concurrent use.
type Builder struct {
	tmpl       *template.Template
	prefixRole bool
}

// NewBuilder compiles the prompt template.
func NewBuilder(optFns ...func(o *Options)) (*Builder, error) {
	opts := Options{Template: DefaultTemplate}
	for _, fn := range optFns {
		fn(&opts)
	}
	tmpl, err := util.ParseTemplate("system-prompt", opts.Template)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Builder{tmpl: tmpl, prefixRole: opts.PrefixRole}, nil
}

// MustNewBuilder is like NewBuilder but panics on an invalid template.
func MustNewBuilder(optFns ...func(o *Options)) *Builder {
	b, err := NewBuilder(optFns...)
	if err != nil {
		panic(err)
	}
	return b
}

// Build returns the effective system prompt for agent.
func (b *Builder) Build(agent core.Agent, hints core.RequestHints) string {
	if custom := strings.TrimSpace(agent.SystemPrompt); custom != "" {
		if b.prefixRole && agent.Role != "" {
			return "Role: " + agent.Role + "\n\n" + agent.SystemPrompt
		}
		return agent.SystemPrompt
	}
	out, err := util.RenderTemplate(b.tmpl, Data{
		Role:        agent.Role,
		DisplayName: agent.DisplayName,
		Key:         agent.Key,
		Hints:       hints,
	})
	if err != nil {
		return fallback(agent)
	}
	return out
}

func fallback(agent core.Agent) string {
	role := strings.TrimSpace(agent.Role)
	if role == "" {
		role = "a helpful assistant"
	}
	return "You are " + role + ". Keep your responses concise and helpful."
}
