package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentgroup/core"
)

// CallbackType defines the lifecycle points where callbacks are executed.
//
// Callbacks provide a mechanism for hooking into an orchestration without
// modifying core logic:
//   - OnStateChange: the coordinator entered a new State
//   - BeforeAgent: an admitted agent is about to execute
//   - AfterAgent: an agent produced its AgentResponse
//
// BeforeAgent and AfterAgent callbacks run on the agent's goroutine and may
// therefore run concurrently with each other.
type CallbackType string

const (
	// CallbackOnStateChange is triggered on every coordinator state transition.
	CallbackOnStateChange CallbackType = "on_state_change"

	// CallbackBeforeAgent is triggered before an admitted agent executes.
	CallbackBeforeAgent CallbackType = "before_agent"

	// CallbackAfterAgent is triggered after an agent completed, failed or
	// timed out. Use for progress reporting or metrics collection.
	CallbackAfterAgent CallbackType = "after_agent"
)

// CallbackContext provides context information for callback execution.
type CallbackContext struct {
	// RequestID identifies the orchestration call.
	RequestID string

	// GroupID is the group the request was addressed to.
	GroupID string

	// CallbackType indicates which callback type triggered this execution.
	CallbackType CallbackType

	// State is the coordinator state (OnStateChange only).
	State State

	// Agent is the agent being executed (BeforeAgent/AfterAgent only).
	Agent *core.Agent

	// Response is the agent outcome (AfterAgent only).
	Response *core.AgentResponse
}

// Callback defines the interface for orchestration lifecycle hooks.
//
// Implementations should be fast and safe for concurrent use. A returned
// error is logged by the engine; it never aborts an orchestration, whose
// contract is to always produce a result.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	progress := NewFunctionCallback(
//	    CallbackAfterAgent,
//	    func(ctx context.Context, cc *CallbackContext) error {
//	        fmt.Printf("%s finished: %s\n", cc.Agent.Key, cc.Response.Status)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager is a registry of callbacks keyed by type.
//
// Callbacks are executed in registration order. Registration is not
// synchronized: register everything before the engine serves requests.
// Execution is safe for concurrent use once registration is complete.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new callback manager instance.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback to the manager for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks executes all registered callbacks for the specified type.
// Every callback runs; the first error (if any) is returned.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	var first error
	for _, callback := range cm.callbacks[callbackType] {
		if err := callback.Execute(ctx, callbackCtx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LoggingCallback forwards lifecycle events to a logging function.
//
// Example:
//
//	callback := NewLoggingCallback(CallbackOnStateChange, func(msg string) {
//	    log.Printf("[ENGINE] %s", msg)
//	})
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the event with request, state and agent information.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}
	switch {
	case callbackCtx.Response != nil:
		c.logger(fmt.Sprintf("[%s] request=%s agent=%s status=%s",
			c.callbackType, callbackCtx.RequestID, callbackCtx.Response.AgentKey, callbackCtx.Response.Status))
	case callbackCtx.Agent != nil:
		c.logger(fmt.Sprintf("[%s] request=%s agent=%s",
			c.callbackType, callbackCtx.RequestID, callbackCtx.Agent.Key))
	default:
		c.logger(fmt.Sprintf("[%s] request=%s state=%s",
			c.callbackType, callbackCtx.RequestID, callbackCtx.State))
	}
	return nil
}
