// Package cache provides the TTL-bound response cache consulted by the agent
// executor before it calls a model.
//
// ResponseCache owns the caching policy (key derivation, privacy rule, TTL,
// lazy expiry on read and threshold sweeps on write) and delegates storage
// to a Store backend. InMemoryStore is the process-local backend; the
// cache/sqlite package provides a persistent one. Both are safe for
// concurrent use, so one ResponseCache can be shared by all executors.
package cache
