// Package format renders an orchestration result as a single Markdown text
// block suitable for a chat transcript.
package format

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agentgroup/core"
)

// Status markers used in section headers.
const (
	MarkerSuccess = "✅"
	MarkerTimeout = "⏱️"
	MarkerFailed  = "❌"
	MarkerWarning = "⚠️"
)

// Result renders result. A warning-only result renders as the warning alone.
// Otherwise each response gets a section in order, sections are separated
// by a divider and a summary line closes the text.
func Result(result core.OrchestratorResult) string {
	if len(result.Responses) == 0 {
		if result.WarningMessage == "" {
			return ""
		}
		return fmt.Sprintf("%s **%s**", MarkerWarning, result.WarningMessage)
	}

	var b strings.Builder
	if result.WarningMessage != "" {
		fmt.Fprintf(&b, "%s **Warning:** %s\n\n", MarkerWarning, result.WarningMessage)
	}

	for i, r := range result.Responses {
		writeSection(&b, r)
		if i < len(result.Responses)-1 {
			b.WriteString("---\n\n")
		}
	}

	fmt.Fprintf(&b, "\n*Executed %d agents in %dms. %d successful.*",
		len(result.Responses), result.TotalTime.Milliseconds(), result.SuccessCount())

	opt := result.TokenOptimization
	if opt.EstimatedTokensSaved > 0 {
		fmt.Fprintf(&b, "\n*Saved ~%d tokens by skipping %d agents.*",
			opt.EstimatedTokensSaved, opt.AgentsRequested-opt.AgentsExecuted)
	}
	return b.String()
}

func writeSection(b *strings.Builder, r core.AgentResponse) {
	fmt.Fprintf(b, "## %s %s (@%s)", marker(r.Status), r.DisplayName, r.AgentKey)
	if r.Cached {
		b.WriteString(" _(cached)_")
	}
	b.WriteString("\n\n")

	switch {
	case r.Status == core.StatusSuccess && r.Response != "":
		b.WriteString(r.Response)
	case r.Status == core.StatusSuccess:
		b.WriteString("*Empty response.*")
	case r.Status == core.StatusTimeout:
		fmt.Fprintf(b, "*Response timed out: %s*", errorText(r))
	default:
		fmt.Fprintf(b, "*Failed to respond: %s*", errorText(r))
	}
	b.WriteString("\n\n")
}

func marker(s core.Status) string {
	switch s {
	case core.StatusSuccess:
		return MarkerSuccess
	case core.StatusTimeout:
		return MarkerTimeout
	default:
		return MarkerFailed
	}
}

func errorText(r core.AgentResponse) string {
	if r.Error == "" {
		return "Unknown error"
	}
	return r.Error
}
