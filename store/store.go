package store

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/agentgroup/core"
)

// ErrAgentNotFound is returned when an agent id is unknown.
var ErrAgentNotFound = errors.New("agent not found")

// Group is a named set of agents owned by one user.
type Group struct {
	ID        string    `json:"id" yaml:"id"`
	OwnerID   string    `json:"owner_id" yaml:"owner_id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

// Store is the administrative surface shared by the reference stores.
type Store interface {
	core.AgentStore

	// AllAgents returns every member of the group in join order with
	// LocalEnabled populated, eligible or not.
	AllAgents(ctx context.Context, groupID, userID string) ([]core.Agent, error)

	// CreateGroup creates or renames a group.
	CreateGroup(ctx context.Context, g Group) error

	// PutAgent creates or replaces a global agent definition.
	PutAgent(ctx context.Context, a core.Agent) error

	// AddToGroup adds an agent to a group or updates its local flag.
	// Re-adding keeps the original join position.
	AddToGroup(ctx context.Context, groupID, agentID string, localEnabled bool) error
}

// CanAccess reports whether userID may read g. An empty owner or user
// disables the check.
func CanAccess(g Group, userID string) bool {
	return g.OwnerID == "" || userID == "" || g.OwnerID == userID
}
