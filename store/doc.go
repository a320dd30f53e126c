// Package store provides reference core.AgentStore implementations and the
// seed file format used to populate them.
//
// A group holds an ordered membership list: agents are returned in the order
// they joined. Each membership carries a group-local enablement flag next to
// the agent's global one; only agents enabled in both places are eligible.
//
// Implementations:
//   - InMemoryStore: process-local maps guarded by a RWMutex (tests, demos)
//   - sqlite.Store: modernc.org/sqlite backed persistence (CLI)
package store
