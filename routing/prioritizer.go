package routing

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/agentgroup/core"
)

// Scorer ranks an agent's relevance for a message. Higher is better.
// Implementations must be deterministic for a given input.
type Scorer interface {
	Score(agent core.Agent, message string) float64
}

// PromptScorer is implemented by scorers that weigh the effective system
// prompt an agent will run with, which may differ from agent.SystemPrompt.
type PromptScorer interface {
	ScoreWithPrompt(agent core.Agent, message, systemPrompt string) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(agent core.Agent, message string) float64

// Score implements Scorer.
func (f ScorerFunc) Score(agent core.Agent, message string) float64 { return f(agent, message) }

const (
	// DefaultShortPromptBonus is added for agents whose prompt is cheap to send.
	DefaultShortPromptBonus = 2
	// DefaultShortPromptThreshold is the prompt length (characters) below which the bonus applies.
	DefaultShortPromptThreshold = 500
	minWordLength               = 3
)

// KeywordScorer scores agents by word overlap between the message and the
// agent's key, display name, role and system prompt vocabulary, plus a
// fixed bonus for short system prompts.
type KeywordScorer struct {
	ShortPromptBonus     float64
	ShortPromptThreshold int
	PreferShortPrompts   bool
}

// NewKeywordScorer returns a KeywordScorer with the default bonus settings.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{
		ShortPromptBonus:     DefaultShortPromptBonus,
		ShortPromptThreshold: DefaultShortPromptThreshold,
		PreferShortPrompts:   true,
	}
}

// Score implements Scorer using agent.SystemPrompt as the prompt.
func (s *KeywordScorer) Score(agent core.Agent, message string) float64 {
	return s.ScoreWithPrompt(agent, message, agent.SystemPrompt)
}

// ScoreWithPrompt implements PromptScorer. Each message word counts once
// when it is a substring of a vocabulary word or contains one. The short
// prompt bonus is judged on systemPrompt.
func (s *KeywordScorer) ScoreWithPrompt(agent core.Agent, message, systemPrompt string) float64 {
	vocab := uniqueWords(strings.Join([]string{agent.Key, agent.DisplayName, agent.Role, agent.SystemPrompt}, " "))
	var score float64
	for _, w := range uniqueWords(message) {
		for _, v := range vocab {
			if strings.Contains(v, w) || strings.Contains(w, v) {
				score++
				break
			}
		}
	}
	if s.PreferShortPrompts && utf8.RuneCountInString(systemPrompt) < s.ShortPromptThreshold {
		score += s.ShortPromptBonus
	}
	return score
}

// Prioritize returns agents sorted by descending score. Agents with equal
// scores keep their input order. No agent is dropped.
func Prioritize(agents []core.Agent, message string, scorer Scorer) []core.Agent {
	return PrioritizeWithPrompts(agents, nil, message, scorer)
}

// PrioritizeWithPrompts is Prioritize with the effective system prompt of
// each agent, index-aligned with agents. A PromptScorer is scored against
// those prompts; other scorers ignore them.
func PrioritizeWithPrompts(agents []core.Agent, prompts []string, message string, scorer Scorer) []core.Agent {
	type scored struct {
		agent core.Agent
		score float64
	}
	ranked := make([]scored, len(agents))
	for i, a := range agents {
		ranked[i] = scored{agent: a}
		switch ps, ok := scorer.(PromptScorer); {
		case ok && i < len(prompts):
			ranked[i].score = ps.ScoreWithPrompt(a, message, prompts[i])
		case scorer != nil:
			ranked[i].score = scorer.Score(a, message)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	out := make([]core.Agent, len(ranked))
	for i, r := range ranked {
		out[i] = r.agent
	}
	return out
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func uniqueWords(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, w := range words(text) {
		if utf8.RuneCountInString(w) < minWordLength {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
