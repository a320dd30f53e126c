// Package sqlite provides a store.Store backed by SQLite (modernc.org/sqlite,
// pure Go). It persists groups, global agent definitions and ordered group
// memberships with their local enablement flag.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS agent_groups (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS agents (
	id            TEXT PRIMARY KEY,
	owner_id      TEXT NOT NULL DEFAULT '',
	key           TEXT NOT NULL,
	display_name  TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT '',
	model         TEXT NOT NULL DEFAULT '',
	system_prompt TEXT NOT NULL DEFAULT '',
	color         TEXT NOT NULL DEFAULT '',
	max_tokens    INTEGER NOT NULL DEFAULT 0,
	temperature   REAL,
	enabled       INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS group_members (
	group_id TEXT NOT NULL,
	agent_id TEXT NOT NULL,
	enabled  INTEGER NOT NULL DEFAULT 1,
	added_at INTEGER NOT NULL,
	PRIMARY KEY (group_id, agent_id)
);
CREATE INDEX IF NOT EXISTS idx_group_members_order ON group_members(group_id, added_at);
`

// Store implements store.Store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens or creates a SQLite database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers; busy_timeout covers other processes.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and ensures the schema. The caller keeps
// ownership of db.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init agent schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateGroup implements store.Store.
func (s *Store) CreateGroup(ctx context.Context, g store.Group) error {
	if g.ID == "" {
		return fmt.Errorf("group id is required")
	}
	created := g.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_groups (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id, name = excluded.name`,
		g.ID, g.OwnerID, g.Name, created.UnixNano())
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// PutAgent implements store.Store.
func (s *Store) PutAgent(ctx context.Context, a core.Agent) error {
	if a.ID == "" || a.Key == "" {
		return fmt.Errorf("agent id and key are required")
	}
	var temperature sql.NullFloat64
	if a.Temperature != nil {
		temperature = sql.NullFloat64{Float64: *a.Temperature, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agents (id, owner_id, key, display_name, role, model, system_prompt, color, max_tokens, temperature, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id, key = excluded.key, display_name = excluded.display_name,
			role = excluded.role, model = excluded.model, system_prompt = excluded.system_prompt,
			color = excluded.color, max_tokens = excluded.max_tokens, temperature = excluded.temperature,
			enabled = excluded.enabled`,
		a.ID, a.OwnerID, a.Key, a.DisplayName, a.Role, a.Model, a.SystemPrompt, a.Color,
		a.MaxTokens, temperature, a.Enabled)
	if err != nil {
		return fmt.Errorf("put agent: %w", err)
	}
	return nil
}

// AddToGroup implements store.Store.
func (s *Store) AddToGroup(ctx context.Context, groupID, agentID string, localEnabled bool) error {
	if _, err := s.group(ctx, groupID); err != nil {
		return err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM agents WHERE id = ?`, agentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", store.ErrAgentNotFound, agentID)
	}
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, agent_id, enabled, added_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(group_id, agent_id) DO UPDATE SET enabled = excluded.enabled`,
		groupID, agentID, localEnabled, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("add to group: %w", err)
	}
	return nil
}

// AllAgents implements store.Store.
func (s *Store) AllAgents(ctx context.Context, groupID, userID string) ([]core.Agent, error) {
	g, err := s.group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !store.CanAccess(g, userID) {
		return nil, fmt.Errorf("%w: %s", core.ErrGroupNotFound, groupID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.owner_id, a.key, a.display_name, a.role, a.model, a.system_prompt,
		       a.color, a.max_tokens, a.temperature, a.enabled, ga.enabled
		FROM group_members ga
		JOIN agents a ON a.id = ga.agent_id
		WHERE ga.group_id = ?
		ORDER BY ga.added_at, ga.rowid`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()

	var out []core.Agent
	for rows.Next() {
		var (
			a           core.Agent
			temperature sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Key, &a.DisplayName, &a.Role, &a.Model, &a.SystemPrompt,
			&a.Color, &a.MaxTokens, &temperature, &a.Enabled, &a.LocalEnabled); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		if temperature.Valid {
			t := temperature.Float64
			a.Temperature = &t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// EligibleAgents implements core.AgentStore.
func (s *Store) EligibleAgents(ctx context.Context, groupID, userID string) ([]core.Agent, error) {
	all, err := s.AllAgents(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	return core.FilterEligible(all), nil
}

func (s *Store) group(ctx context.Context, groupID string) (store.Group, error) {
	var (
		g       store.Group
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, created_at FROM agent_groups WHERE id = ?`, groupID,
	).Scan(&g.ID, &g.OwnerID, &g.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Group{}, fmt.Errorf("%w: %s", core.ErrGroupNotFound, groupID)
	}
	if err != nil {
		return store.Group{}, err
	}
	g.CreatedAt = time.Unix(0, created)
	return g, nil
}
