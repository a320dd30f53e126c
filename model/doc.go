// Package model defines the provider-agnostic abstraction over language
// model backends used by the agent executor.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Resolve catalog model ids to provider models (Registry)
//   - Protect providers with circuit breakers and rate limits (wrappers)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (model/openai, model/anthropic) implement the Model interface so
// the executor stays decoupled from vendor SDKs. A Model must tolerate being
// abandoned mid-stream: callers cancel the context they passed to Generate
// and stop reading, and the provider goroutine has to exit on its own.
package model
