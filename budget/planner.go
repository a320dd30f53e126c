package budget

import (
	"github.com/hupe1980/agentgroup/core"
)

// Candidate is an agent considered for admission together with its
// effective system prompt.
type Candidate struct {
	Agent        core.Agent
	SystemPrompt string
}

// Plan is the admission decision for one request.
type Plan struct {
	Admitted             []Candidate
	Skipped              int
	Reason               core.SkipReason
	EstimatedTokensSaved int
	TotalTokens          int   // Estimated tokens of the admitted set
	Costs                []int // Estimated cost per admitted candidate
}

// Planner admits candidates under a tier's limits.
type Planner struct {
	estimator Estimator
}

// NewPlanner creates a planner. A nil estimator uses a RatioEstimator with
// the ratio of the limits passed to Plan.
func NewPlanner(est Estimator) *Planner {
	return &Planner{estimator: est}
}

// cost estimates the tokens consumed by running one candidate against history.
func cost(c Candidate, historyTokens int, est Estimator) int {
	return est.EstimateTokens(c.SystemPrompt) + historyTokens + c.Agent.OutputTokens()
}

// Plan walks candidates in priority order and admits each one while the
// admitted count stays below MaxParallelAgents and the running total stays
// within MaxTotalTokens. The first candidate failing either test stops
// admission for it and every candidate after it.
func (p *Planner) Plan(candidates []Candidate, history []core.Content, limits Limits) Plan {
	est := p.estimator
	if est == nil {
		est = RatioEstimator{CharsPerToken: limits.TokenRatio}
	}
	historyTokens := HistoryTokens(est, history)

	plan := Plan{}
	for i, c := range candidates {
		if len(plan.Admitted) >= limits.MaxParallelAgents {
			plan.Reason = core.ReasonParallelLimit
			plan.Skipped = len(candidates) - i
			break
		}
		n := cost(c, historyTokens, est)
		if plan.TotalTokens+n > limits.MaxTotalTokens {
			plan.Reason = core.ReasonTokenBudget
			plan.Skipped = len(candidates) - i
			break
		}
		plan.TotalTokens += n
		plan.Costs = append(plan.Costs, n)
		plan.Admitted = append(plan.Admitted, c)
	}
	plan.EstimatedTokensSaved = plan.Skipped * limits.EstimatedTokensPerAgent
	return plan
}

// Agents returns the admitted agents in admission order.
func (p Plan) Agents() []core.Agent {
	out := make([]core.Agent, len(p.Admitted))
	for i, c := range p.Admitted {
		out[i] = c.Agent
	}
	return out
}
