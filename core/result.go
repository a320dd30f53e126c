package core

import "time"

// Status is the terminal state of a single agent execution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
)

// SkipReason explains why requested agents did not execute.
type SkipReason string

const (
	ReasonNone          SkipReason = ""
	ReasonInvalidTags   SkipReason = "invalid_tags"
	ReasonTokenBudget   SkipReason = "token_budget"
	ReasonParallelLimit SkipReason = "parallel_limit"
)

// AgentResponse is the immutable outcome of one executed agent.
type AgentResponse struct {
	AgentID      string        `json:"agent_id"`
	AgentKey     string        `json:"agent_key"`
	DisplayName  string        `json:"display_name"`
	Status       Status        `json:"status"`
	Response     string        `json:"response,omitempty"`
	Error        string        `json:"error,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
	Color        string        `json:"color,omitempty"`
	Cached       bool          `json:"cached,omitempty"`
}

// OK reports whether the response completed successfully.
func (r AgentResponse) OK() bool { return r.Status == StatusSuccess }

// TokenOptimization summarizes admission decisions of the budget planner.
type TokenOptimization struct {
	AgentsRequested      int        `json:"agents_requested"`
	AgentsExecuted       int        `json:"agents_executed"`
	EstimatedTokensSaved int        `json:"estimated_tokens_saved"`
	Reason               SkipReason `json:"reason,omitempty"`
}

// OrchestratorResult is the sole return value of an orchestration call.
// Responses are ordered by admission, not completion.
type OrchestratorResult struct {
	RequestID         string            `json:"request_id"`
	Responses         []AgentResponse   `json:"responses"`
	TotalTime         time.Duration     `json:"total_time"`
	HasErrors         bool              `json:"has_errors"`
	WarningMessage    string            `json:"warning_message,omitempty"`
	TokenOptimization TokenOptimization `json:"token_optimization"`
}

// SuccessCount returns the number of successful responses.
func (r OrchestratorResult) SuccessCount() int {
	n := 0
	for _, resp := range r.Responses {
		if resp.OK() {
			n++
		}
	}
	return n
}
