package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hupe1980/agentgroup/budget"
	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/logging"
	"github.com/hupe1980/agentgroup/model"
	"github.com/hupe1980/agentgroup/prompt"
	"github.com/hupe1980/agentgroup/tracing"
)

// TruncationNotice is appended to outputs cut at the length limit.
const TruncationNotice = "\n\n[Output truncated due to length limit]"

// Options configure an Executor.
type Options struct {
	// Cache is consulted before and written after a successful generation.
	// Nil disables caching.
	Cache core.ResponseCache
	// Prompts synthesizes system prompts for agents without a custom one.
	Prompts *prompt.Builder
	Logger  logging.Logger
}

// Executor runs single agents. It is safe for concurrent use.
type Executor struct {
	models  *model.Registry
	cache   core.ResponseCache
	prompts *prompt.Builder
	logger  logging.Logger
}

// New creates an Executor resolving models through models.
func New(models *model.Registry, optFns ...func(o *Options)) *Executor {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.MustNewBuilder()
	}
	return &Executor{
		models:  models,
		cache:   opts.Cache,
		prompts: opts.Prompts,
		logger:  opts.Logger,
	}
}

// SystemPrompt returns the effective system prompt the executor will use
// for agent. The engine plans token budgets with the same text.
func (e *Executor) SystemPrompt(agent core.Agent, hints core.RequestHints) string {
	return e.prompts.Build(agent, hints)
}

// Execute runs agent for req under limits and reports the outcome.
func (e *Executor) Execute(ctx context.Context, agent core.Agent, req core.ExecutionRequest, limits budget.Limits) (resp core.AgentResponse) {
	start := time.Now()
	resp = core.AgentResponse{
		AgentID:     agent.ID,
		AgentKey:    agent.Key,
		DisplayName: agent.DisplayName,
		Color:       agent.Color,
	}

	ctx, span := tracing.StartSpan(ctx, "execute_agent",
		tracing.String(tracing.AttrAgentID, agent.ID),
		tracing.String(tracing.AttrAgentKey, agent.Key),
		tracing.String(tracing.AttrModel, agent.Model),
	)

	var modelID string
	defer func() {
		if r := recover(); r != nil {
			resp.Status = core.StatusFailed
			resp.Response = ""
			resp.Error = fmt.Sprintf("panic: %v", r)
		}
		resp.ResponseTime = time.Since(start)

		span.SetAttributes(
			tracing.String(tracing.AttrStatus, string(resp.Status)),
			tracing.Bool(tracing.AttrCached, resp.Cached),
		)
		var err error
		if !resp.OK() {
			err = errors.New(resp.Error)
			tracing.RecordError(span, err)
		} else {
			tracing.SetOK(span)
		}
		span.End()
		logging.LogAgentExecution(e.logger, agent.Key, modelID, string(resp.Status), resp.ResponseTime, resp.Cached, err)
	}()

	systemPrompt := e.prompts.Build(agent, req.Hints)

	if e.cache != nil && req.UserMessage != "" {
		if cached, ok := e.cache.Get(ctx, agent.ID, req.UserMessage, systemPrompt); ok {
			resp.Status = core.StatusSuccess
			resp.Response = cached
			resp.Cached = true
			return resp
		}
	}

	m, id, err := e.models.Resolve(agent.Model, req.SelectedModel)
	modelID = id
	if err != nil {
		return failed(resp, err)
	}

	temperature := agent.EffectiveTemperature()
	text, err := e.generate(ctx, m, model.Request{
		Instructions: systemPrompt,
		Contents:     Conversation(req),
		Temperature:  &temperature,
		MaxTokens:    agent.OutputTokens(),
		Stream:       true,
	}, limits)
	switch {
	case errors.Is(err, core.ErrAgentTimeout):
		resp.Status = core.StatusTimeout
		resp.Error = err.Error()
		return resp
	case err != nil:
		return failed(resp, err)
	}

	resp.Status = core.StatusSuccess
	resp.Response = text
	if e.cache != nil && req.UserMessage != "" {
		e.cache.Set(ctx, agent.ID, req.UserMessage, systemPrompt, text)
	}
	return resp
}

// generate streams one generation, racing it against limits.AgentTimeout.
// It stops reading once the output exceeds limits.MaxOutputLength runes.
// The derived context is canceled on return so an abandoned backend call
// can wind down.
func (e *Executor) generate(ctx context.Context, m model.Model, req model.Request, limits budget.Limits) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var timeout <-chan time.Time
	if limits.AgentTimeout > 0 {
		timer := time.NewTimer(limits.AgentTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	respCh, errCh := m.Generate(ctx, req)

	var (
		b       strings.Builder
		runes   int
		final   string
		partial bool
	)
	for respCh != nil || errCh != nil {
		select {
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			chunk := r.Content.Text()
			if !r.Partial {
				final = chunk
				continue
			}
			partial = true
			b.WriteString(chunk)
			runes += utf8.RuneCountInString(chunk)
			if limits.MaxOutputLength > 0 && runes > limits.MaxOutputLength {
				return truncate(b.String(), limits.MaxOutputLength), nil
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return "", err
			}
		case <-timeout:
			return "", core.ErrAgentTimeout
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	text := b.String()
	if !partial {
		text = final
	}
	if limits.MaxOutputLength > 0 && utf8.RuneCountInString(text) > limits.MaxOutputLength {
		return truncate(text, limits.MaxOutputLength), nil
	}
	return text, nil
}

// truncate cuts text to limit runes and appends the truncation notice.
func truncate(text string, limit int) string {
	n := 0
	for i := range text {
		if n == limit {
			return text[:i] + TruncationNotice
		}
		n++
	}
	return text + TruncationNotice
}

// Conversation returns the contents sent to the model for req: the request
// history, or the bare user message when no history was supplied.
func Conversation(req core.ExecutionRequest) []core.Content {
	if len(req.Messages) > 0 {
		return req.Messages
	}
	return []core.Content{core.NewTextContent(core.RoleUser, req.UserMessage)}
}

func failed(resp core.AgentResponse, err error) core.AgentResponse {
	resp.Status = core.StatusFailed
	resp.Error = err.Error()
	return resp
}
