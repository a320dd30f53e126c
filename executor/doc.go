// Package executor runs a single agent against a language model.
//
// An Executor consults the response cache, resolves the agent's model through
// a model.Registry, streams the generation while racing it against the
// per-agent timeout and caps the output length. Every outcome, including
// panics, is reported as a core.AgentResponse; Execute never returns an error.
package executor
