// Package engine implements the orchestration coordinator.
//
// One call to Engine.Orchestrate fans a single user message out to several
// agents of a group and joins their answers into a core.OrchestratorResult.
// The engine never returns an error: every failure becomes result data.
//
// # Lifecycle
//
// Each orchestration walks a small state machine:
//
//	loading-agents ──► no-agents                       (terminal)
//	       │       ──► tag-mismatch                    (terminal)
//	       │       ──► failed                          (terminal)
//	       ▼
//	planning-budget ──► executing ──► aggregating      (terminal)
//
//   - loading-agents: eligible agents are read from the core.AgentStore.
//     A lookup error ends in failed with "Failed to execute agents: <err>".
//   - Routing: @tags in the message select agents by key. When tags name no
//     eligible agent the request ends in tag-mismatch with a warning listing
//     the available keys. Unknown tags next to known ones are reported in a
//     non-fatal warning. Without tags every eligible agent is a candidate and
//     candidates are ranked by a routing.Scorer.
//   - planning-budget: the budget.Planner admits candidates in order under
//     the caller tier's parallel and token limits (greedy, first miss stops).
//   - executing: one goroutine per admitted agent runs executor.Execute; the
//     engine waits for all of them. A slow agent only ends its own wait.
//   - aggregating: responses are kept in admission order and HasErrors is set
//     when any agent did not succeed.
//
// # Callbacks
//
// A CallbackManager receives OnStateChange for every transition and
// BeforeAgent/AfterAgent around each execution. Agent callbacks run on the
// agent goroutines. Callback errors and panics are logged and otherwise
// ignored.
//
// # Observability
//
// Every orchestration gets a UUID request id, an "orchestrate" span with one
// "execute_agent" child span per agent, and a summary log line.
//
// Example:
//
//	eng := engine.New(agentStore, registry, func(o *engine.Options) {
//	    o.Cache = cache.New(nil)
//	    o.Logger = logging.NewLogger(nil)
//	})
//	result := eng.Orchestrate(ctx, core.ExecutionRequest{
//	    GroupID:     "team",
//	    UserID:      "user-1",
//	    UserMessage: "@coder review this",
//	    Messages:    history,
//	})
//	fmt.Println(format.Result(result))
package engine
