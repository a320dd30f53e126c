package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/agentgroup/core"
)

func TestResult_WarningOnly(t *testing.T) {
	out := Result(core.OrchestratorResult{
		WarningMessage: "No agents found for tags: @coder. Available agents: @writer.",
	})

	assert.Equal(t, "⚠️ **No agents found for tags: @coder. Available agents: @writer.**", out)
	assert.NotContains(t, out, "##")
}

func TestResult_Empty(t *testing.T) {
	assert.Empty(t, Result(core.OrchestratorResult{}))
}

func TestResult_Sections(t *testing.T) {
	out := Result(core.OrchestratorResult{
		Responses: []core.AgentResponse{
			{AgentKey: "writer", DisplayName: "Writer", Status: core.StatusSuccess, Response: "Here is a draft."},
			{AgentKey: "sloth", DisplayName: "Sloth", Status: core.StatusTimeout, Error: "agent timeout"},
			{AgentKey: "coder", DisplayName: "Coder", Status: core.StatusFailed, Error: "provider unavailable"},
		},
		TotalTime: 1234 * time.Millisecond,
		HasErrors: true,
	})

	want := "## ✅ Writer (@writer)\n\n" +
		"Here is a draft.\n\n" +
		"---\n\n" +
		"## ⏱️ Sloth (@sloth)\n\n" +
		"*Response timed out: agent timeout*\n\n" +
		"---\n\n" +
		"## ❌ Coder (@coder)\n\n" +
		"*Failed to respond: provider unavailable*\n\n" +
		"\n*Executed 3 agents in 1234ms. 1 successful.*"
	assert.Equal(t, want, out)
}

func TestResult_WarningAndSavings(t *testing.T) {
	out := Result(core.OrchestratorResult{
		Responses: []core.AgentResponse{
			{AgentKey: "a", DisplayName: "A", Status: core.StatusSuccess, Response: "hi", Cached: true},
		},
		TotalTime:      5 * time.Millisecond,
		WarningMessage: "Executing first 1 agents due to parallel limit. 2 agents skipped.",
		TokenOptimization: core.TokenOptimization{
			AgentsRequested:      3,
			AgentsExecuted:       1,
			EstimatedTokensSaved: 1000,
			Reason:               core.ReasonParallelLimit,
		},
	})

	assert.True(t, strings.HasPrefix(out, "⚠️ **Warning:** Executing first 1 agents due to parallel limit. 2 agents skipped.\n\n"))
	assert.Contains(t, out, "## ✅ A (@a) _(cached)_\n\nhi\n\n")
	assert.NotContains(t, out, "---")
	assert.Contains(t, out, "*Executed 1 agents in 5ms. 1 successful.*")
	assert.True(t, strings.HasSuffix(out, "\n*Saved ~1000 tokens by skipping 2 agents.*"))
}

func TestResult_MissingErrorAndEmptyResponse(t *testing.T) {
	out := Result(core.OrchestratorResult{
		Responses: []core.AgentResponse{
			{AgentKey: "a", DisplayName: "A", Status: core.StatusFailed},
			{AgentKey: "b", DisplayName: "B", Status: core.StatusSuccess},
		},
	})

	assert.Contains(t, out, "*Failed to respond: Unknown error*")
	assert.Contains(t, out, "*Empty response.*")
	assert.Equal(t, 1, strings.Count(out, "---"))
}
