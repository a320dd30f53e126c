package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/viper"

	"github.com/hupe1980/agentgroup"
	"github.com/hupe1980/agentgroup/budget"
	"github.com/hupe1980/agentgroup/cache"
	cachesqlite "github.com/hupe1980/agentgroup/cache/sqlite"
	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/logging"
	"github.com/hupe1980/agentgroup/model"
	anthropicmodel "github.com/hupe1980/agentgroup/model/anthropic"
	openaimodel "github.com/hupe1980/agentgroup/model/openai"
	storesqlite "github.com/hupe1980/agentgroup/store/sqlite"
	"github.com/hupe1980/agentgroup/tracing"
)

// DefaultModelID is the catalog id agents fall back to.
const DefaultModelID = "chat-model"

var errNoModels = errors.New("no model provider configured: set OPENAI_API_KEY, ANTHROPIC_API_KEY or --mock")

type app struct {
	store  *storesqlite.Store
	group  *agentgroup.Group
	logger logging.Logger
	tier   core.Tier
	userID string

	closers []func(context.Context) error
}

func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}

func newLogger(v *viper.Viper, out io.Writer) (*logging.GroupLogger, error) {
	level, err := logging.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    v.GetString(keyLogFormat),
		Output:    out,
		Component: "cli",
	}), nil
}

// openStore opens the agent database only; it is enough for administrative
// commands that never reach a model.
func openStore(v *viper.Viper) (*storesqlite.Store, error) {
	st, err := storesqlite.Open(v.GetString(keyDB))
	if err != nil {
		return nil, fmt.Errorf("open agent store: %w", err)
	}
	return st, nil
}

func wireApp(ctx context.Context, v *viper.Viper, stderr io.Writer) (*app, error) {
	logger, err := newLogger(v, stderr)
	if err != nil {
		return nil, err
	}

	cfg, err := loadBudget(v)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(v, logger)
	if err != nil {
		return nil, err
	}

	st, err := openStore(v)
	if err != nil {
		return nil, err
	}
	a := &app{
		store:   st,
		logger:  logger,
		tier:    core.ParseTier(v.GetString(keyTier)),
		userID:  v.GetString(keyUser),
		closers: []func(context.Context) error{func(context.Context) error { return st.Close() }},
	}

	responseCache, err := buildCache(v, logger, a)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	shutdown, err := tracing.Setup(ctx, tracing.Config{
		Enabled:  v.GetBool(keyTracingEnabled),
		Exporter: v.GetString(keyTracingExport),
		Writer:   stderr,
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	a.closers = append(a.closers, shutdown)

	a.group = agentgroup.New(st, func(o *agentgroup.Options) {
		o.Config = cfg
		o.Models = registry
		o.Cache = responseCache
		o.DisableCache = v.GetBool(keyCacheDisabled)
		o.Logger = logger
	})
	return a, nil
}

// loadBudget layers defaults, the optional YAML file and AI_GROUPS_* variables.
func loadBudget(v *viper.Viper) (budget.Config, error) {
	cfg := budget.DefaultConfig()
	if path := v.GetString(keyBudgetFile); path != "" {
		loaded, err := budget.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, fmt.Errorf("budget environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func buildCache(v *viper.Viper, logger logging.Logger, a *app) (core.ResponseCache, error) {
	path := v.GetString(keyCacheDB)
	if path == "" || v.GetBool(keyCacheDisabled) {
		// agentgroup.New falls back to the in-memory cache.
		return nil, nil
	}
	backend, err := cachesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open response cache: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return backend.Close() })
	return cache.New(backend, func(o *cache.Options) { o.Logger = logger }), nil
}

type catalogEntry struct {
	id       string
	provider string
	name     string
}

// catalog maps the model ids agents may reference onto provider models.
// The first available entry becomes the registry default.
var catalog = []catalogEntry{
	{id: DefaultModelID, provider: "openai", name: "gpt-4o-mini"},
	{id: "chat-model-reasoning", provider: "openai", name: "o4-mini"},
	{id: "openai-gpt-4", provider: "openai", name: "gpt-4o"},
	{id: "openai-gpt-3.5-turbo", provider: "openai", name: "gpt-3.5-turbo"},
	{id: DefaultModelID, provider: "anthropic", name: "claude-3-5-haiku-latest"},
	{id: "anthropic-claude-3.5-sonnet", provider: "anthropic", name: "claude-3-5-sonnet-latest"},
	{id: "anthropic-claude-3-haiku", provider: "anthropic", name: "claude-3-haiku-20240307"},
}

func buildRegistry(v *viper.Viper, logger logging.Logger) (*model.Registry, error) {
	registry := model.NewRegistry()

	if v.GetBool(keyMock) {
		registry.Register(DefaultModelID, model.NewMockModel("mock", "mock"))
		return registry, nil
	}

	openaiKey := v.GetString(keyOpenAIKey)
	anthropicKey := v.GetString(keyAnthropicKey)

	breaker := model.BreakerConfig{MaxFailures: uint32(v.GetUint(keyBreakerFails))}
	perMinute := v.GetFloat64(keyRatePerMinute)
	burst := v.GetInt(keyRateBurst)

	registered := map[string]bool{}
	for _, e := range catalog {
		if registered[e.id] {
			continue
		}
		var m model.Model
		switch {
		case e.provider == "openai" && openaiKey != "":
			m = openaimodel.NewModel(func(o *openaimodel.Options) {
				o.Model = e.name
				o.APIKey = openaiKey
				o.BaseURL = v.GetString(keyOpenAIBaseURL)
			})
		case e.provider == "anthropic" && anthropicKey != "":
			m = anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
				o.Model = anthropic.Model(e.name)
				o.APIKey = anthropicKey
				o.BaseURL = v.GetString(keyAnthropicURL)
			})
		default:
			continue
		}
		m = model.WithCircuitBreaker(m, breaker, logger)
		registry.Register(e.id, model.WithRateLimit(m, perMinute, burst))
		registered[e.id] = true
	}

	if len(registered) == 0 {
		return nil, errNoModels
	}
	return registry, nil
}
