package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentgroup/core"
)

// Seed is the YAML document accepted by LoadSeed.
//
//	agents:
//	  - id: agent-coder
//	    key: coder
//	    display_name: Coder
//	    role: Senior Go developer
//	    enabled: true
//	groups:
//	  - id: team
//	    owner_id: user-1
//	    name: Team
//	    members:
//	      - agent: agent-coder
//	        enabled: true
type Seed struct {
	Agents []core.Agent `yaml:"agents"`
	Groups []SeedGroup  `yaml:"groups"`
}

// SeedGroup is a group with its ordered members.
type SeedGroup struct {
	Group   `yaml:",inline"`
	Members []SeedMember `yaml:"members"`
}

// SeedMember references an agent by id. Enabled defaults to true.
type SeedMember struct {
	Agent   string `yaml:"agent"`
	Enabled *bool  `yaml:"enabled"`
}

// LoadSeed reads a seed document from path.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return &seed, nil
}

// Apply writes the seed into s. Agents are written before groups so that
// members can reference them.
func (seed *Seed) Apply(ctx context.Context, s Store) error {
	for _, a := range seed.Agents {
		if err := s.PutAgent(ctx, a); err != nil {
			return fmt.Errorf("agent %s: %w", a.ID, err)
		}
	}
	for _, g := range seed.Groups {
		if err := s.CreateGroup(ctx, g.Group); err != nil {
			return fmt.Errorf("group %s: %w", g.ID, err)
		}
		for _, m := range g.Members {
			enabled := m.Enabled == nil || *m.Enabled
			if err := s.AddToGroup(ctx, g.ID, m.Agent, enabled); err != nil {
				return fmt.Errorf("group %s: %w", g.ID, err)
			}
		}
	}
	return nil
}
