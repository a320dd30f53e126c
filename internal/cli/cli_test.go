package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedFixture = `
agents:
  - id: agent-writer
    key: writer
    display_name: Writer
    role: technical writer
    enabled: true
  - id: agent-coder
    key: coder
    display_name: Coder
    role: Go developer
    model: chat-model-reasoning
    enabled: true
groups:
  - id: team
    owner_id: user-1
    name: Team
    members:
      - agent: agent-writer
      - agent: agent-coder
        enabled: false
`

func TestVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestSeedThenAgents(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := executeCLI(t, "--db", db, "agents", "team")
	require.NoError(t, err)
	assert.Contains(t, stdout, "KEY")
	assert.Regexp(t, `@writer\s+Writer\s+chat-model\s+on\s+on\s+yes`, stdout)
	assert.Regexp(t, `@coder\s+Coder\s+chat-model-reasoning\s+on\s+off\s+no`, stdout)
}

func TestAgentsUnknownGroup(t *testing.T) {
	db := seededDB(t)

	_, _, err := executeCLI(t, "--db", db, "agents", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group not found")
}

func TestAskWithMockModel(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := executeCLI(t, "--db", db, "--mock", "ask", "team", "hello", "there")
	require.NoError(t, err)
	assert.Contains(t, stdout, "## ✅ Writer (@writer)")
	assert.Contains(t, stdout, "Mock response to: hello there")
	assert.Contains(t, stdout, "*Executed 1 agents in")
	assert.NotContains(t, stdout, "@coder")
}

func TestAskJSONOutput(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := executeCLI(t, "--db", db, "--mock", "ask", "--json", "team", "hello")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Contains(t, result, "request_id")
	assert.Len(t, result["responses"], 1)
}

func TestAskTagMismatch(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := executeCLI(t, "--db", db, "--mock", "ask", "team", "@nobody hi")
	require.NoError(t, err)
	assert.Contains(t, stdout, "⚠️ **")
	assert.Contains(t, stdout, "@writer")
}

func TestAskWithoutProviders(t *testing.T) {
	db := seededDB(t)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, _, err := executeCLI(t, "--db", db, "ask", "team", "hello")
	require.ErrorIs(t, err, errNoModels)
}

func TestAskRejectsBadLogLevel(t *testing.T) {
	_, _, err := executeCLI(t, "--log-level", "loud", "--mock", "ask", "team", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestAskReadsBudgetFileFromEnv(t *testing.T) {
	db := seededDB(t)
	path := filepath.Join(t.TempDir(), "budget.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base:\n  max_parallel_agents: 0\n"), 0o600))
	t.Setenv("AGENTGROUP_BUDGET_FILE", path)

	_, _, err := executeCLI(t, "--db", db, "--mock", "ask", "team", "hello")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	db := seededDB(t)
	cfg := filepath.Join(t.TempDir(), "agentgroup.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("db: "+db+"\nmock: true\n"), 0o600))

	stdout, _, err := executeCLI(t, "--config", cfg, "ask", "team", "hello")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Mock response to: hello")
}

func TestSeedMissingFile(t *testing.T) {
	_, _, err := executeCLI(t, "--db", filepath.Join(t.TempDir(), "a.db"), "seed", "does-not-exist.yaml")
	require.Error(t, err)
}

func seededDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(seedFixture), 0o600))

	db := filepath.Join(dir, "agentgroup.db")
	stdout, _, err := executeCLI(t, "--db", db, "seed", seed)
	require.NoError(t, err)
	require.Contains(t, stdout, "seeded 2 agents and 1 groups")
	return db
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
