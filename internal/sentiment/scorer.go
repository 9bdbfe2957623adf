// Package sentiment scores headlines and reduces them to one label per
// security.
package sentiment

import (
	"context"
	"math"
)

// Scorer rates the tone of a text in [-1, 1].
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, text string) (float64, error)

func (f ScorerFunc) Score(ctx context.Context, text string) (float64, error) { return f(ctx, text) }

// Clamp bounds v to [-1, 1]; NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// StaticScorer returns the same score for every text.
type StaticScorer float64

func (s StaticScorer) Score(context.Context, string) (float64, error) { return float64(s), nil }
