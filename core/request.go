package core

import "strings"

// Tier identifies the caller's plan and parameterizes budget limits.
type Tier string

const (
	TierFree       Tier = "free"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// ParseTier maps a free-form value onto a known tier. Unknown values fall
// back to TierFree.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierPremium:
		return TierPremium
	case TierEnterprise:
		return TierEnterprise
	default:
		return TierFree
	}
}

// RequestHints describe the caller context that is folded into synthesized
// system prompts.
type RequestHints struct {
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	City      string `json:"city,omitempty"`
	Country   string `json:"country,omitempty"`
}

// ExecutionRequest is the input of a single orchestration call.
type ExecutionRequest struct {
	GroupID       string
	UserID        string
	Messages      []Content // Ordered conversation history including the latest user turn
	Hints         RequestHints
	SelectedModel string // Fallback model id for agents without their own model
	UserMessage   string // Raw text of the latest user turn
	Tier          Tier
}
