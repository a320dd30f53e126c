package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/agentgroup/budget"
	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/executor"
	"github.com/hupe1980/agentgroup/logging"
	"github.com/hupe1980/agentgroup/model"
	"github.com/hupe1980/agentgroup/prompt"
	"github.com/hupe1980/agentgroup/routing"
	"github.com/hupe1980/agentgroup/tracing"
)

// NoAgentsWarning is reported when a group has no eligible agent.
const NoAgentsWarning = "No active agents found in this group. Please add and enable agents to get responses."

// Options configures an Engine instance using the functional options pattern.
//
// Example:
//
//	eng := New(store, registry, func(o *Options) {
//	    o.Cache = cache.New(nil)
//	    o.Logger = logger
//	})
type Options struct {
	// Config holds the base limits, tier derivation and prioritization switches.
	// Defaults to budget.DefaultConfig().
	Config budget.Config

	// Cache is consulted per agent. Nil disables response caching.
	Cache core.ResponseCache

	// Scorer ranks broadcast candidates. Defaults to a routing.KeywordScorer
	// honoring Config.PreferShorterPrompts.
	Scorer routing.Scorer

	// Estimator counts tokens for admission. Defaults to the ratio estimator
	// of the tier limits.
	Estimator budget.Estimator

	// Prompts synthesizes system prompts for agents without a custom one.
	Prompts *prompt.Builder

	// Callbacks receives lifecycle notifications. Optional.
	Callbacks *CallbackManager

	// Logger provides structured logging. Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Engine coordinates one orchestration per call: it loads the group's
// eligible agents, routes the message, admits agents under the tier budget,
// executes them concurrently and aggregates their responses.
//
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	store     core.AgentStore
	executor  *executor.Executor
	planner   *budget.Planner
	scorer    routing.Scorer
	config    budget.Config
	callbacks *CallbackManager
	logger    logging.Logger
}

// New creates an Engine reading agents from store and resolving their
// models through models.
func New(store core.AgentStore, models *model.Registry, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: budget.DefaultConfig(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Scorer == nil {
		s := routing.NewKeywordScorer()
		s.PreferShortPrompts = opts.Config.PreferShorterPrompts
		opts.Scorer = s
	}
	if opts.Callbacks == nil {
		opts.Callbacks = NewCallbackManager()
	}

	return &Engine{
		store: store,
		executor: executor.New(models, func(o *executor.Options) {
			o.Cache = opts.Cache
			o.Prompts = opts.Prompts
			o.Logger = opts.Logger
		}),
		planner:   budget.NewPlanner(opts.Estimator),
		scorer:    opts.Scorer,
		config:    opts.Config,
		callbacks: opts.Callbacks,
		logger:    opts.Logger,
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() budget.Config { return e.config }

// Orchestrate runs one orchestration and always returns a result. Lookup
// failures and panics before execution are converted into a terminal result
// with HasErrors set; per-agent failures are recorded in the responses.
// Responses are ordered by admission, not by completion.
func (e *Engine) Orchestrate(ctx context.Context, req core.ExecutionRequest) (result core.OrchestratorResult) {
	start := time.Now()
	requestID := uuid.NewString()
	tier := core.ParseTier(string(req.Tier))
	limits := e.config.ForTier(tier)
	log := requestLogger(e.logger, requestID, req.GroupID)

	ctx, span := tracing.StartSpan(ctx, "orchestrate",
		tracing.String(tracing.AttrRequestID, requestID),
		tracing.String(tracing.AttrGroupID, req.GroupID),
		tracing.String(tracing.AttrTier, string(tier)),
	)

	result.RequestID = requestID
	defer func() {
		if r := recover(); r != nil {
			result = failure(requestID, fmt.Errorf("panic: %v", r))
			e.transition(ctx, log, requestID, req.GroupID, StateFailed)
		}
		result.TotalTime = time.Since(start)

		opt := result.TokenOptimization
		span.SetAttributes(
			tracing.Int(tracing.AttrRequested, opt.AgentsRequested),
			tracing.Int(tracing.AttrExecuted, opt.AgentsExecuted),
			tracing.String(tracing.AttrReason, string(opt.Reason)),
		)
		if result.HasErrors {
			tracing.RecordError(span, fmt.Errorf("%d of %d agents failed", len(result.Responses)-result.SuccessCount(), len(result.Responses)))
		} else {
			tracing.SetOK(span)
		}
		span.End()
		logging.LogOrchestration(log, opt.AgentsRequested, opt.AgentsExecuted, result.SuccessCount(), result.TotalTime, string(opt.Reason))
	}()

	e.transition(ctx, log, requestID, req.GroupID, StateLoadingAgents)
	agents, err := e.store.EligibleAgents(ctx, req.GroupID, req.UserID)
	if err != nil {
		log.Error("Failed to load agents", "error", err)
		e.transition(ctx, log, requestID, req.GroupID, StateFailed)
		return failure(requestID, err)
	}
	agents = core.FilterEligible(agents)
	if len(agents) == 0 {
		e.transition(ctx, log, requestID, req.GroupID, StateNoAgents)
		result.WarningMessage = NoAgentsWarning
		return result
	}

	tags := routing.ParseTags(req.UserMessage)
	sel := routing.SelectCandidates(agents, tags)
	if sel.Mismatch() {
		e.transition(ctx, log, requestID, req.GroupID, StateTagMismatch)
		result.WarningMessage = tagMismatchWarning(tags, agents)
		result.TokenOptimization = core.TokenOptimization{
			AgentsRequested: len(tags),
			Reason:          core.ReasonInvalidTags,
		}
		return result
	}

	candidates := sel.Candidates
	if sel.Broadcast() && e.config.SmartPrioritization {
		prompts := make([]string, len(candidates))
		for i, a := range candidates {
			prompts[i] = e.executor.SystemPrompt(a, req.Hints)
		}
		candidates = routing.PrioritizeWithPrompts(candidates, prompts, req.UserMessage, e.scorer)
	}

	e.transition(ctx, log, requestID, req.GroupID, StatePlanningBudget)
	planned := make([]budget.Candidate, len(candidates))
	for i, a := range candidates {
		planned[i] = budget.Candidate{Agent: a, SystemPrompt: e.executor.SystemPrompt(a, req.Hints)}
	}
	plan := e.planner.Plan(planned, executor.Conversation(req), limits)
	log.Debug("Budget planned",
		"candidates", len(candidates),
		"admitted", len(plan.Admitted),
		"estimated_tokens", plan.TotalTokens,
		"reason", string(plan.Reason),
	)

	var warnings []string
	if len(sel.Unknown) > 0 {
		warnings = append(warnings, unknownTagsWarning(sel.Unknown, agents))
	}
	if w := budgetWarning(plan, len(candidates)); w != "" {
		warnings = append(warnings, w)
	}
	result.WarningMessage = strings.Join(warnings, " ")
	result.TokenOptimization = core.TokenOptimization{
		AgentsRequested:      len(candidates),
		AgentsExecuted:       len(plan.Admitted),
		EstimatedTokensSaved: plan.EstimatedTokensSaved,
		Reason:               plan.Reason,
	}

	e.transition(ctx, log, requestID, req.GroupID, StateExecuting)
	result.Responses = e.executeAll(ctx, requestID, req, plan.Agents(), limits)

	e.transition(ctx, log, requestID, req.GroupID, StateAggregating)
	for _, r := range result.Responses {
		if !r.OK() {
			result.HasErrors = true
			break
		}
	}
	return result
}

// executeAll runs one goroutine per agent and joins them. Each result is
// written to the slot of its admission index.
func (e *Engine) executeAll(
	ctx context.Context,
	requestID string,
	req core.ExecutionRequest,
	agents []core.Agent,
	limits budget.Limits,
) []core.AgentResponse {
	responses := make([]core.AgentResponse, len(agents))

	var wg sync.WaitGroup
	for i := range agents {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			agent := agents[i]
			e.callback(ctx, CallbackBeforeAgent, &CallbackContext{
				RequestID: requestID,
				GroupID:   req.GroupID,
				Agent:     &agent,
			})
			responses[i] = e.executor.Execute(ctx, agent, req, limits)
			resp := responses[i]
			e.callback(ctx, CallbackAfterAgent, &CallbackContext{
				RequestID: requestID,
				GroupID:   req.GroupID,
				Agent:     &agent,
				Response:  &resp,
			})
		}(i)
	}
	wg.Wait()

	return responses
}

func (e *Engine) transition(ctx context.Context, log logging.Logger, requestID, groupID string, s State) {
	log.Debug("State changed", "state", string(s))
	e.callback(ctx, CallbackOnStateChange, &CallbackContext{
		RequestID: requestID,
		GroupID:   groupID,
		State:     s,
	})
}

// callback runs callbacks of type t. Errors and panics are logged only.
func (e *Engine) callback(ctx context.Context, t CallbackType, cc *CallbackContext) {
	cc.CallbackType = t
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Callback panicked", "callback", string(t), "panic", r)
		}
	}()
	if err := e.callbacks.ExecuteCallbacks(ctx, t, cc); err != nil {
		e.logger.Warn("Callback failed", "callback", string(t), "error", err)
	}
}

func requestLogger(l logging.Logger, requestID, groupID string) logging.Logger {
	if gl, ok := l.(*logging.GroupLogger); ok {
		return gl.WithRequest(requestID, groupID)
	}
	return l
}

func failure(requestID string, err error) core.OrchestratorResult {
	return core.OrchestratorResult{
		RequestID:      requestID,
		HasErrors:      true,
		WarningMessage: "Failed to execute agents: " + err.Error(),
	}
}

func tagMismatchWarning(tags []string, available []core.Agent) string {
	return fmt.Sprintf("No agents found for tags: %s. Available agents: %s.",
		routing.FormatTags(tags), routing.FormatTags(routing.AgentKeys(available)))
}

func unknownTagsWarning(unknown []string, available []core.Agent) string {
	return fmt.Sprintf("Ignoring unknown tags: %s. Available agents: %s.",
		routing.FormatTags(unknown), routing.FormatTags(routing.AgentKeys(available)))
}

func budgetWarning(plan budget.Plan, requested int) string {
	switch plan.Reason {
	case core.ReasonParallelLimit:
		return fmt.Sprintf("Executing first %d agents due to parallel limit. %d agents skipped.",
			len(plan.Admitted), plan.Skipped)
	case core.ReasonTokenBudget:
		return fmt.Sprintf("Executing %d of %d agents to stay within the token budget. %d agents skipped.",
			len(plan.Admitted), requested, plan.Skipped)
	default:
		return ""
	}
}
