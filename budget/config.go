package budget

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/internal/util"
)

// Limits are the effective, read-only limits for one tier.
type Limits struct {
	MaxParallelAgents       int           `yaml:"max_parallel_agents"`
	MaxTotalTokens          int           `yaml:"max_total_tokens"`
	AgentTimeout            time.Duration `yaml:"agent_timeout"`
	MaxOutputLength         int           `yaml:"max_output_length"` // characters
	TokenRatio              float64       `yaml:"token_ratio"`       // characters per token
	EstimatedTokensPerAgent int           `yaml:"estimated_tokens_per_agent"`
}

// TierOverride replaces base limits for a single tier. Zero fields keep the
// derived value.
type TierOverride struct {
	MaxParallelAgents int `yaml:"max_parallel_agents"`
	MaxTotalTokens    int `yaml:"max_total_tokens"`
}

// Config is the process-wide orchestration configuration.
type Config struct {
	Base                 Limits                     `yaml:"base"`
	SmartPrioritization  bool                       `yaml:"smart_prioritization"`
	PreferShorterPrompts bool                       `yaml:"prefer_shorter_prompts"`
	Tiers                map[core.Tier]TierOverride `yaml:"tiers"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Base: Limits{
			MaxParallelAgents:       3,
			MaxTotalTokens:          8000,
			AgentTimeout:            20 * time.Second,
			MaxOutputLength:         3000,
			TokenRatio:              4,
			EstimatedTokensPerAgent: 500,
		},
		SmartPrioritization:  true,
		PreferShorterPrompts: true,
	}
}

// ForTier derives the limits of tier from the base limits. Premium doubles
// parallelism (capped at 5) and tokens; enterprise runs 10 agents with five
// times the token budget. Explicit tier overrides win.
func (c Config) ForTier(tier core.Tier) Limits {
	l := c.Base
	switch tier {
	case core.TierPremium:
		l.MaxParallelAgents = min(c.Base.MaxParallelAgents*2, 5)
		l.MaxTotalTokens = c.Base.MaxTotalTokens * 2
	case core.TierEnterprise:
		l.MaxParallelAgents = 10
		l.MaxTotalTokens = c.Base.MaxTotalTokens * 5
	}
	if o, ok := c.Tiers[tier]; ok {
		if o.MaxParallelAgents > 0 {
			l.MaxParallelAgents = o.MaxParallelAgents
		}
		if o.MaxTotalTokens > 0 {
			l.MaxTotalTokens = o.MaxTotalTokens
		}
	}
	return l
}

// Validate rejects non-positive limits.
func (c Config) Validate() error {
	v := &util.Validator{}
	util.Positive(v, "base.max_parallel_agents", c.Base.MaxParallelAgents)
	util.Positive(v, "base.max_total_tokens", c.Base.MaxTotalTokens)
	util.Positive(v, "base.agent_timeout", c.Base.AgentTimeout)
	util.Positive(v, "base.max_output_length", c.Base.MaxOutputLength)
	util.Positive(v, "base.token_ratio", c.Base.TokenRatio)
	v.Check(c.Base.EstimatedTokensPerAgent >= 0, "base.estimated_tokens_per_agent", c.Base.EstimatedTokensPerAgent, "must not be negative")
	for tier, o := range c.Tiers {
		v.Check(o.MaxParallelAgents >= 0, "tiers."+string(tier)+".max_parallel_agents", o.MaxParallelAgents, "must not be negative")
		v.Check(o.MaxTotalTokens >= 0, "tiers."+string(tier)+".max_total_tokens", o.MaxTotalTokens, "must not be negative")
	}
	return v.Err()
}

// LoadConfig reads a YAML file on top of DefaultConfig. Fields absent from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Environment variables recognized by ApplyEnv.
const (
	EnvMaxParallelAgents  = "AI_GROUPS_MAX_PARALLEL_AGENTS"
	EnvTimeoutMS          = "AI_GROUPS_TIMEOUT_MS"
	EnvMaxOutputLength    = "AI_GROUPS_MAX_OUTPUT_LENGTH"
	EnvTokensPerAgent     = "AI_GROUPS_TOKENS_PER_AGENT"
	EnvMaxTokens          = "AI_GROUPS_MAX_TOKENS"
	EnvSmartPriority      = "AI_GROUPS_SMART_PRIORITY"
	EnvPreferShortPrompts = "AI_GROUPS_PREFER_SHORT_PROMPTS"
	EnvTokenRatio         = "AI_GROUPS_TOKEN_RATIO"
)

// ApplyEnv overrides cfg with values from the environment using lookup
// (os.LookupEnv when nil). Malformed values are reported and skipped.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v := &util.Validator{}
	setInt := func(key string, dst *int) {
		if s, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			v.Check(err == nil, key, s, "must be an integer")
			if err == nil {
				*dst = n
			}
		}
	}
	setInt(EnvMaxParallelAgents, &c.Base.MaxParallelAgents)
	setInt(EnvMaxOutputLength, &c.Base.MaxOutputLength)
	setInt(EnvTokensPerAgent, &c.Base.EstimatedTokensPerAgent)
	setInt(EnvMaxTokens, &c.Base.MaxTotalTokens)

	var timeoutMS int
	if _, ok := lookup(EnvTimeoutMS); ok {
		timeoutMS = int(c.Base.AgentTimeout / time.Millisecond)
		setInt(EnvTimeoutMS, &timeoutMS)
		c.Base.AgentTimeout = time.Duration(timeoutMS) * time.Millisecond
	}
	if s, ok := lookup(EnvTokenRatio); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		v.Check(err == nil, EnvTokenRatio, s, "must be a number")
		if err == nil {
			c.Base.TokenRatio = f
		}
	}
	// Feature switches are on unless explicitly "false".
	if s, ok := lookup(EnvSmartPriority); ok {
		c.SmartPrioritization = s != "false"
	}
	if s, ok := lookup(EnvPreferShortPrompts); ok {
		c.PreferShorterPrompts = s != "false"
	}
	return v.Err()
}
