package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentgroup/core"
)

type membership struct {
	agentID      string
	localEnabled bool
}

// InMemoryStore is a naive process-local Store.
//
// Concurrency: protected by RWMutex. Returned agents are copies.
type InMemoryStore struct {
	mu      sync.RWMutex
	groups  map[string]Group
	agents  map[string]core.Agent    // agentID -> global definition
	members map[string][]membership // groupID -> members in join order
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new in-memory agent store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		groups:  make(map[string]Group),
		agents:  make(map[string]core.Agent),
		members: make(map[string][]membership),
	}
}

// CreateGroup implements Store.
func (s *InMemoryStore) CreateGroup(_ context.Context, g Group) error {
	if g.ID == "" {
		return fmt.Errorf("group id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.groups[g.ID]; ok {
		g.CreatedAt = prev.CreatedAt
	} else if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	s.groups[g.ID] = g
	return nil
}

// PutAgent implements Store.
func (s *InMemoryStore) PutAgent(_ context.Context, a core.Agent) error {
	if a.ID == "" || a.Key == "" {
		return fmt.Errorf("agent id and key are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.LocalEnabled = false
	s.agents[a.ID] = a
	return nil
}

// AddToGroup implements Store.
func (s *InMemoryStore) AddToGroup(_ context.Context, groupID, agentID string, localEnabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrGroupNotFound, groupID)
	}
	if _, ok := s.agents[agentID]; !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	members := s.members[groupID]
	for i := range members {
		if members[i].agentID == agentID {
			members[i].localEnabled = localEnabled
			return nil
		}
	}
	s.members[groupID] = append(members, membership{agentID: agentID, localEnabled: localEnabled})
	return nil
}

// AllAgents implements Store.
func (s *InMemoryStore) AllAgents(_ context.Context, groupID, userID string) ([]core.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok || !CanAccess(g, userID) {
		return nil, fmt.Errorf("%w: %s", core.ErrGroupNotFound, groupID)
	}
	members := s.members[groupID]
	out := make([]core.Agent, 0, len(members))
	for _, m := range members {
		a, ok := s.agents[m.agentID]
		if !ok {
			continue
		}
		a.LocalEnabled = m.localEnabled
		out = append(out, a)
	}
	return out, nil
}

// EligibleAgents implements core.AgentStore.
func (s *InMemoryStore) EligibleAgents(ctx context.Context, groupID, userID string) ([]core.Agent, error) {
	all, err := s.AllAgents(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	return core.FilterEligible(all), nil
}
