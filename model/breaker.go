package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/hupe1980/agentgroup/logging"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the circuit breaker behavior.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration `yaml:"timeout"`
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration `yaml:"interval"`
}

// BreakerModel wraps a Model with circuit breaker protection. A generation
// counts as one breaker request spanning the whole stream. Cancellation by
// the caller is not counted as a provider failure.
type BreakerModel struct {
	inner   Model
	breaker *gobreaker.CircuitBreaker[struct{}]
}

var _ Model = (*BreakerModel)(nil)

// WithCircuitBreaker wraps inner with a circuit breaker. Zero fields in cfg
// fall back to defaults. logger may be nil.
func WithCircuitBreaker(inner Model, cfg BreakerConfig, logger logging.Logger) *BreakerModel {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	info := inner.Info()
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "model:" + info.Provider + "/" + info.Name,
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})
	return &BreakerModel{inner: inner, breaker: cb}
}

// Generate implements Model. Calls are routed through the circuit breaker.
func (m *BreakerModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	out := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		_, err := m.breaker.Execute(func() (struct{}, error) {
			respCh, innerErr := m.inner.Generate(ctx, req)
			return struct{}{}, forward(ctx, respCh, innerErr, out)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				err = fmt.Errorf("model %q circuit open: %w", m.inner.Info().Name, err)
			}
			errCh <- err
		}
	}()
	return out, errCh
}

// Info implements Model.
func (m *BreakerModel) Info() Info { return m.inner.Info() }

// State returns the current circuit breaker state for monitoring.
func (m *BreakerModel) State() gobreaker.State { return m.breaker.State() }

// Counts returns the current circuit breaker failure/success counts.
func (m *BreakerModel) Counts() gobreaker.Counts { return m.breaker.Counts() }
