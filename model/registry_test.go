package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	chat := NewMockModel("chat", "mock")
	reasoning := NewMockModel("reasoning", "mock")
	r := NewRegistry().Register("chat-model", chat).Register("chat-model-reasoning", reasoning)

	t.Run("agent model wins", func(t *testing.T) {
		m, id, err := r.Resolve("chat-model-reasoning", "chat-model")
		require.NoError(t, err)
		assert.Equal(t, "chat-model-reasoning", id)
		assert.Same(t, reasoning, m)
	})

	t.Run("falls back to request model", func(t *testing.T) {
		m, id, err := r.Resolve("", "chat-model")
		require.NoError(t, err)
		assert.Equal(t, "chat-model", id)
		assert.Same(t, chat, m)
	})

	t.Run("falls back to default", func(t *testing.T) {
		m, id, err := r.Resolve("", "")
		require.NoError(t, err)
		assert.Equal(t, "chat-model", id)
		assert.Same(t, chat, m)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, id, err := r.Resolve("gpt-9")
		assert.ErrorIs(t, err, ErrModelNotFound)
		assert.Equal(t, "gpt-9", id)
	})
}

func TestRegistry_EmptyHasNoDefault(t *testing.T) {
	_, _, err := NewRegistry().Resolve()
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestRegistry_IDs(t *testing.T) {
	r := NewRegistry().Register("b", NewMockModel("b", "mock")).Register("a", NewMockModel("a", "mock"))
	r.SetDefault("b")
	assert.Equal(t, []string{"a", "b"}, r.IDs())

	_, id, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "b", id)
}
