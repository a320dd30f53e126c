package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgroup/core"
	"github.com/hupe1980/agentgroup/model"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) *Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := openai.NewClient(
		option.WithBaseURL(srv.URL+"/"),
		option.WithAPIKey("test"),
		option.WithMaxRetries(0),
	)
	return NewModelFromClient(&client)
}

func collect(respCh <-chan model.Response, errCh <-chan error) ([]model.Response, error) {
	var out []model.Response
	for r := range respCh {
		out = append(out, r)
	}
	return out, <-errCh
}

func TestBuildMessages(t *testing.T) {
	req := model.Request{
		Instructions: "You are a poet.",
		Contents: []core.Content{
			core.NewTextContent(core.RoleUser, "write"),
			core.NewTextContent(core.RoleAssistant, "a verse"),
			core.NewTextContent(core.RoleUser, "   "),
			core.NewTextContent(core.RoleUser, "again"),
		},
	}
	msgs := buildMessages(req)
	require.Len(t, msgs, 4)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)
	assert.NotNil(t, msgs[3].OfUser)
}

func TestBuildParams_RequestOverridesDefaults(t *testing.T) {
	m := NewModelFromClient(&openai.Client{}, func(o *Options) { o.Model = "gpt-4o" })

	params := m.buildParams(model.Request{})
	assert.Equal(t, "gpt-4o", params.Model)
	assert.InDelta(t, core.DefaultTemperature, params.Temperature.Value, 1e-9)
	assert.Equal(t, int64(core.DefaultMaxTokens), params.MaxCompletionTokens.Value)

	temp := 0.2
	params = m.buildParams(model.Request{Temperature: &temp, MaxTokens: 300})
	assert.InDelta(t, 0.2, params.Temperature.Value, 1e-9)
	assert.Equal(t, int64(300), params.MaxCompletionTokens.Value)
}

func TestGenerate_NonStreaming(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(150), body["max_completion_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id":"cmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`)
	})

	resps, err := collect(m.Generate(context.Background(), model.Request{
		Contents:  []core.Content{core.NewTextContent(core.RoleUser, "hi")},
		MaxTokens: 150,
	}))
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "hello there", resps[0].Content.Text())
	assert.Equal(t, "stop", resps[0].FinishReason)
	require.NotNil(t, resps[0].Usage)
	assert.Equal(t, 7, resps[0].Usage.TotalTokens)
}

func TestGenerate_Streaming(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":"Hel"},"finish_reason":null}]}`,
			`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":"lo"},"finish_reason":"stop"}]}`,
		}
		for _, c := range chunks {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", c)
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	})

	resps, err := collect(m.Generate(context.Background(), model.Request{
		Contents: []core.Content{core.NewTextContent(core.RoleUser, "hi")},
		Stream:   true,
	}))
	require.NoError(t, err)
	require.Len(t, resps, 3)
	assert.True(t, resps[0].Partial)
	assert.Equal(t, "Hel", resps[0].Content.Text())
	assert.False(t, resps[2].Partial)
	assert.Equal(t, "Hello", resps[2].Content.Text())
	assert.Equal(t, "stop", resps[2].FinishReason)
}

func TestGenerate_APIError(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	_, err := collect(m.Generate(context.Background(), model.Request{
		Contents: []core.Content{core.NewTextContent(core.RoleUser, "hi")},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai api error")
}

func TestInfo(t *testing.T) {
	info := NewModelFromClient(&openai.Client{}).Info()
	assert.Equal(t, "openai", info.Provider)
	assert.Equal(t, openai.ChatModelGPT4oMini, info.Name)
}
