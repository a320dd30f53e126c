package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level) (*GroupLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewLogger(&LoggerConfig{Level: level, Output: buf}), buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGroupLogger_LevelFilter(t *testing.T) {
	l, buf := newBufferLogger(LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	recs := records(t, buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "WARN", recs[0]["level"])
	assert.Equal(t, "ERROR", recs[1]["level"])
}

func TestGroupLogger_ContextCloning(t *testing.T) {
	base, buf := newBufferLogger(LevelInfo)
	req := base.WithComponent("engine").WithRequest("req-1", "team").With("tier", "premium")

	req.Info("with context")
	base.Info("without context")

	recs := records(t, buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "engine", recs[0]["component"])
	assert.Equal(t, "req-1", recs[0]["request_id"])
	assert.Equal(t, "team", recs[0]["group_id"])
	assert.Equal(t, "premium", recs[0]["tier"])
	assert.NotContains(t, recs[1], "request_id")
	assert.NotContains(t, recs[1], "tier")
}

func TestLogAgentExecution(t *testing.T) {
	l, buf := newBufferLogger(LevelInfo)

	LogAgentExecution(l, "coder", "chat-model", "success", time.Second, true, nil)
	LogAgentExecution(l, "writer", "chat-model", "failed", time.Second, false, errors.New("boom"))

	recs := records(t, buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "Agent execution completed", recs[0]["msg"])
	assert.Equal(t, true, recs[0]["cached"])
	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, "boom", recs[1]["error"])
}

func TestLogOrchestration(t *testing.T) {
	l, buf := newBufferLogger(LevelInfo)

	LogOrchestration(l, 5, 3, 2, 10*time.Millisecond, "parallel_limit")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.EqualValues(t, 5, recs[0]["agents_requested"])
	assert.EqualValues(t, 3, recs[0]["agents_executed"])
	assert.Equal(t, "parallel_limit", recs[0]["skip_reason"])
}

func TestTextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "text", Output: buf})

	LogCacheEvent(l, "hit", "agent-1", 0)
	StartTimer(l, "sweep")()

	out := buf.String()
	assert.Contains(t, out, "msg=\"Cache hit\"")
	assert.Contains(t, out, "agent_id=agent-1")
	assert.Contains(t, out, "operation=sweep")
}

func TestFromSlog(t *testing.T) {
	buf := &bytes.Buffer{}
	l := FromSlog(slog.New(slog.NewJSONHandler(buf, nil))).WithComponent("cli")

	l.Info("hello", "k", "v")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "cli", recs[0]["component"])
	assert.Equal(t, "v", recs[0]["k"])
	assert.NotNil(t, FromSlog(nil).Slog())
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
	})
}
