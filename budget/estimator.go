package budget

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hupe1980/agentgroup/core"
)

// Estimator approximates the number of model tokens in text.
type Estimator interface {
	EstimateTokens(text string) int
}

// RatioEstimator divides the character count by a fixed characters-per-token
// ratio, rounding up.
type RatioEstimator struct {
	CharsPerToken float64
}

// EstimateTokens implements Estimator.
func (e RatioEstimator) EstimateTokens(text string) int {
	ratio := e.CharsPerToken
	if ratio <= 0 {
		ratio = 4
	}
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / ratio))
}

// TiktokenEstimator counts tokens with a BPE encoding. The encoding ranks are
// fetched on first use unless a tiktoken offline loader is installed.
type TiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenEstimator loads the named encoding (e.g. "cl100k_base").
func NewTiktokenEstimator(encoding string) (*TiktokenEstimator, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	return &TiktokenEstimator{enc: enc}, nil
}

// EstimateTokens implements Estimator.
func (e *TiktokenEstimator) EstimateTokens(text string) int {
	return len(e.enc.Encode(text, nil, nil))
}

// HistoryTokens sums the estimated tokens of every message's text parts.
func HistoryTokens(est Estimator, history []core.Content) int {
	total := 0
	for _, c := range history {
		total += est.EstimateTokens(c.Text())
	}
	return total
}
