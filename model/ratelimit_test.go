package model

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRateLimit_DisabledReturnsInner(t *testing.T) {
	inner := NewMockModel("chat", "mock")
	assert.Same(t, Model(inner), WithRateLimit(inner, 0, 1))
}

func TestWithRateLimit_WaitsForToken(t *testing.T) {
	inner := NewMockModel("chat", "mock").AddResponse("hi", "hello")
	// One token per minute with burst 1: the first call passes, the second waits.
	m := WithRateLimit(inner, 1, 1)

	text, err := drain(t)(m.Generate(context.Background(), userRequest("hi", false)))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = drain(t)(m.Generate(ctx, userRequest("hi", false)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, 1, inner.Calls())
	assert.Equal(t, inner.Info(), m.Info())
}
