// Package core provides the foundational domain types and ports used by the
// agent group orchestrator. It defines the core abstractions for:
//
//   - Agents (configured personas addressed by an @key inside a group)
//   - Execution requests and their role-tagged, multi-part conversation
//   - Per-agent responses and the aggregated orchestrator result
//   - Pluggable ports for the agent store and the response cache
package core
