package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/internal/testutil"
	"github.com/hupe1980/agentgroup/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "agents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func keys(agents []core.Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.Key
	}
	return out
}

func TestStore_RoundTripAgent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	agent := testutil.NewAgentBuilder("coder").
		Role("Go developer").
		Model("chat-model").
		SystemPrompt("Review Go code.").
		Color("#00ff00").
		MaxTokens(800).
		Temperature(0.2).
		Build()
	require.NoError(t, s.CreateGroup(ctx, store.Group{ID: "team", OwnerID: "user-1", Name: "Team"}))
	require.NoError(t, s.PutAgent(ctx, agent))
	require.NoError(t, s.AddToGroup(ctx, "team", agent.ID, true))

	all, err := s.AllAgents(ctx, "team", "user-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, agent, all[0])
}

func TestStore_OrderAndEligibility(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Unix(1700000000, 0)
	tick := 0
	s.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }

	require.NoError(t, s.CreateGroup(ctx, store.Group{ID: "team", OwnerID: "user-1"}))
	for _, a := range []core.Agent{
		testutil.NewAgentBuilder("writer").Build(),
		testutil.NewAgentBuilder("coder").Build(),
		testutil.NewAgentBuilder("retired").Disabled().Build(),
		testutil.NewAgentBuilder("critic").Build(),
	} {
		require.NoError(t, s.PutAgent(ctx, a))
	}
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-writer", true))
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-coder", false))
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-retired", true))
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-critic", true))
	// Re-adding keeps the join position.
	require.NoError(t, s.AddToGroup(ctx, "team", "agent-writer", true))

	all, err := s.AllAgents(ctx, "team", "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"writer", "coder", "retired", "critic"}, keys(all))

	eligible, err := s.EligibleAgents(ctx, "team", "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"writer", "critic"}, keys(eligible))
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateGroup(ctx, store.Group{ID: "team", OwnerID: "user-1"}))

	_, err := s.EligibleAgents(ctx, "missing", "user-1")
	assert.ErrorIs(t, err, core.ErrGroupNotFound)

	_, err = s.EligibleAgents(ctx, "team", "intruder")
	assert.ErrorIs(t, err, core.ErrGroupNotFound)

	assert.ErrorIs(t, s.AddToGroup(ctx, "team", "agent-ghost", true), store.ErrAgentNotFound)

	agents, err := s.EligibleAgents(ctx, "team", "user-1")
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestStore_SeedApply(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	off := false
	seed := &store.Seed{
		Agents: []core.Agent{
			testutil.NewAgentBuilder("writer").Build(),
			testutil.NewAgentBuilder("coder").Build(),
		},
		Groups: []store.SeedGroup{{
			Group: store.Group{ID: "team", Name: "Team"},
			Members: []store.SeedMember{
				{Agent: "agent-writer"},
				{Agent: "agent-coder", Enabled: &off},
			},
		}},
	}
	require.NoError(t, seed.Apply(ctx, s))

	eligible, err := s.EligibleAgents(ctx, "team", "anyone")
	require.NoError(t, err)
	assert.Equal(t, []string{"writer"}, keys(eligible))
}

func TestStore_ConcurrentMembershipWrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateGroup(ctx, store.Group{ID: "team"}))

	agents := testutil.Agents("a", "b", "c", "d", "e", "f", "g", "h")
	errs := make(chan error, len(agents)*2)
	var wg sync.WaitGroup
	for _, a := range agents {
		wg.Add(1)
		go func(a core.Agent) {
			defer wg.Done()
			if err := s.PutAgent(ctx, a); err != nil {
				errs <- err
				return
			}
			if err := s.AddToGroup(ctx, "team", a.ID, true); err != nil {
				errs <- err
			}
		}(a)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	got, err := s.EligibleAgents(ctx, "team", "")
	require.NoError(t, err)
	assert.Len(t, got, len(agents))
}
