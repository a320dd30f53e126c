package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/internal/testutil"
)

func seeded(t *testing.T) *InMemoryStore {
	t.Helper()
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.CreateGroup(ctx, Group{ID: "team", OwnerID: "user-1", Name: "Team"}))
	for _, a := range []core.Agent{
		testutil.NewAgentBuilder("writer").Build(),
		testutil.NewAgentBuilder("coder").Build(),
		testutil.NewAgentBuilder("retired").Disabled().Build(),
	} {
		require.NoError(t, s.PutAgent(ctx, a))
	}
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-writer", true))
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-coder", false))
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-retired", true))
	return s
}

func TestInMemoryStore_AllAgentsKeepsJoinOrder(t *testing.T) {
	s := seeded(t)

	all, err := s.AllAgents(context.Background(), "team", "user-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"writer", "coder", "retired"}, keys(all))
	assert.True(t, all[0].LocalEnabled)
	assert.False(t, all[1].LocalEnabled)
}

func TestInMemoryStore_EligibleAgents(t *testing.T) {
	s := seeded(t)

	eligible, err := s.EligibleAgents(context.Background(), "team", "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"writer"}, keys(eligible))
}

func TestInMemoryStore_ReAddKeepsPosition(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-writer", false))
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-coder", true))

	eligible, err := s.EligibleAgents(ctx, "team", "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"coder"}, keys(eligible))

	all, err := s.AllAgents(ctx, "team", "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"writer", "coder", "retired"}, keys(all))
}

func TestInMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	_, err := s.EligibleAgents(ctx, "missing", "user-1")
	assert.ErrorIs(t, err, core.ErrGroupNotFound)

	_, err = s.EligibleAgents(ctx, "team", "intruder")
	assert.ErrorIs(t, err, core.ErrGroupNotFound)

	assert.ErrorIs(t, s.AddToGroup(ctx, "team", "agent-ghost", true), ErrAgentNotFound)
	assert.ErrorIs(t, s.AddToGroup(ctx, "missing", "agent-writer", true), core.ErrGroupNotFound)
	assert.Error(t, s.PutAgent(ctx, core.Agent{ID: "x"}))
	assert.Error(t, s.CreateGroup(ctx, Group{}))
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(Group{OwnerID: "u1"}, "u1"))
	assert.True(t, CanAccess(Group{}, "u1"))
	assert.True(t, CanAccess(Group{OwnerID: "u1"}, ""))
	assert.False(t, CanAccess(Group{OwnerID: "u1"}, "u2"))
}

func keys(agents []core.Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.Key
	}
	return out
}
