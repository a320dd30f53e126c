// Package agentgroup provides a high-level façade over the orchestration
// engine, letting one user message be answered by a whole group of AI agents.
// Most applications interact with this package by:
//  1. Registering provider models in a model.Registry
//  2. Creating a Group via New() with a core.AgentStore
//  3. Calling Orchestrate (structured result) or Ask (rendered text)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// concise. Defaults are safe for local development: an in-memory response
// cache, the built-in budget configuration and a no-op logger.
package agentgroup

import (
	"context"
	"strings"

	"github.com/hupe1980/agentgroup/budget"
	"github.com/hupe1980/agentgroup/cache"
	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/engine"
	"github.com/hupe1980/agentgroup/format"
	"github.com/hupe1980/agentgroup/logging"
	"github.com/hupe1980/agentgroup/model"
	"github.com/hupe1980/agentgroup/prompt"
	"github.com/hupe1980/agentgroup/routing"
)

// Options configures the Group instance.
type Options struct {
	// Config holds limits and prioritization switches (defaults to budget.DefaultConfig()).
	Config budget.Config

	// Models resolves agent model ids. Defaults to an empty registry.
	Models *model.Registry

	// Cache stores agent responses (defaults to an in-memory cache).
	Cache core.ResponseCache
	// DisableCache turns response caching off entirely.
	DisableCache bool

	// Optional engine collaborators; nil selects the engine default.
	Scorer    routing.Scorer
	Estimator budget.Estimator
	Prompts   *prompt.Builder
	Callbacks *engine.CallbackManager

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Group is the high-level façade aggregating the engine and its services.
type Group struct {
	opts   Options
	engine *engine.Engine
}

// New creates a Group reading agents from store. Any unset service is
// initialized with its default.
func New(store core.AgentStore, optFns ...func(o *Options)) *Group {
	opts := Options{
		Config: budget.DefaultConfig(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Models == nil {
		opts.Models = model.NewRegistry()
	}
	if opts.DisableCache {
		opts.Cache = nil
	} else if opts.Cache == nil {
		opts.Cache = cache.New(nil, func(o *cache.Options) { o.Logger = opts.Logger })
	}

	e := engine.New(store, opts.Models, func(o *engine.Options) {
		o.Config = opts.Config
		o.Cache = opts.Cache
		o.Scorer = opts.Scorer
		o.Estimator = opts.Estimator
		o.Prompts = opts.Prompts
		o.Callbacks = opts.Callbacks
		o.Logger = opts.Logger
	})
	return &Group{opts: opts, engine: e}
}

// Orchestrate runs one orchestration. It never fails; problems are reported
// inside the result.
func (g *Group) Orchestrate(ctx context.Context, req core.ExecutionRequest) core.OrchestratorResult {
	return g.engine.Orchestrate(ctx, req)
}

// Ask orchestrates req and renders the result as chat text.
func (g *Group) Ask(ctx context.Context, req core.ExecutionRequest) (string, core.OrchestratorResult) {
	result := g.engine.Orchestrate(ctx, req)
	return format.Result(result), result
}

// Models returns the model registry used by the group.
func (g *Group) Models() *model.Registry { return g.opts.Models }

// Cache returns the response cache, or nil when caching is disabled.
func (g *Group) Cache() core.ResponseCache { return g.opts.Cache }

// Format renders an orchestration result as Markdown text.
func Format(result core.OrchestratorResult) string { return format.Result(result) }

// ShouldOrchestrate reports whether a chat message addressed to groupID
// should be answered by a group rather than a single model.
func ShouldOrchestrate(groupID string) bool {
	return strings.TrimSpace(groupID) != ""
}
