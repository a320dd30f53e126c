package testutil

import (
	"github.com/hupe1980/agentgroup/core"
)

// RequestBuilder provides a fluent helper for constructing execution
// requests in tests.
// Example:
//
//	req := NewRequestBuilder("group-1").User("hi").Assistant("hello").User("@coder review").Build()
//
// The last user turn becomes UserMessage.
type RequestBuilder struct {
	req core.ExecutionRequest
}

// NewRequestBuilder creates a builder for a request against groupID by user-1.
func NewRequestBuilder(groupID string) *RequestBuilder {
	return &RequestBuilder{req: core.ExecutionRequest{
		GroupID: groupID,
		UserID:  "user-1",
		Tier:    core.TierFree,
	}}
}

// User appends a user turn and makes it the current message (chainable).
func (b *RequestBuilder) User(text string) *RequestBuilder {
	b.req.Messages = append(b.req.Messages, core.NewTextContent(core.RoleUser, text))
	b.req.UserMessage = text
	return b
}

// Assistant appends an assistant turn (chainable).
func (b *RequestBuilder) Assistant(text string) *RequestBuilder {
	b.req.Messages = append(b.req.Messages, core.NewTextContent(core.RoleAssistant, text))
	return b
}

// UserID sets the requesting user (chainable).
func (b *RequestBuilder) UserID(id string) *RequestBuilder { b.req.UserID = id; return b }

// Tier sets the caller tier (chainable).
func (b *RequestBuilder) Tier(t core.Tier) *RequestBuilder { b.req.Tier = t; return b }

// Model sets the fallback model id (chainable).
func (b *RequestBuilder) Model(id string) *RequestBuilder { b.req.SelectedModel = id; return b }

// Hints sets the caller location hints (chainable).
func (b *RequestBuilder) Hints(h core.RequestHints) *RequestBuilder { b.req.Hints = h; return b }

// Build returns the request.
func (b *RequestBuilder) Build() core.ExecutionRequest { return b.req }
