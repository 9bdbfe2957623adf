package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// financeLexicon weights market vocabulary from -4 to +4.
var financeLexicon = map[string]float64{
	// positive
	"beat": 2.5, "beats": 2.5, "surge": 3, "surges": 3, "soar": 3, "soars": 3, "rally": 2.5,
	"rallies": 2.5, "gain": 2, "gains": 2, "growth": 2, "grows": 2, "record": 0.5, "strong": 2,
	"profit": 1.5, "profits": 1.5, "upgrade": 2.5, "upgraded": 2.5, "outperform": 2.5,
	"accelerates": 2, "expand": 1.5, "expands": 1.5, "solid": 1.5, "positive": 2, "bullish": 3,
	"raises": 1.5, "boost": 2, "boosts": 2, "exceeds": 2.5, "tops": 2, "win": 2, "wins": 2,
	"dividend": 1, "buyback": 1.5, "recovery": 1.5, "rebound": 2, "optimistic": 2.5, "jump": 2,
	"jumps": 2, "climbs": 1.5, "higher": 1, "approval": 2, "approved": 2, "partnership": 1,
	// negative
	"miss": -2.5, "misses": -2.5, "plunge": -3, "plunges": -3, "slump": -3, "slumps": -3,
	"fall": -2, "falls": -2, "drop": -2, "drops": -2, "decline": -2, "declines": -2, "loss": -2,
	"losses": -2, "weak": -2, "downgrade": -2.5, "downgraded": -2.5, "underperform": -2.5,
	"lawsuit": -2, "probe": -2, "investigation": -2, "fraud": -3.5, "bankruptcy": -4,
	"default": -3, "layoffs": -2, "cuts": -1.5, "warning": -2, "warns": -2, "bearish": -3,
	"recession": -2.5, "risk": -1, "risks": -1, "concern": -1.5, "concerns": -1.5, "lower": -1,
	"sell-off": -2.5, "selloff": -2.5, "crash": -3.5, "fined": -2, "recall": -2,
	"negative": -2, "delay": -1.5, "delays": -1.5, "volatile": -1, "inflation": -1,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true, "fails": true, "failed": true,
	"isn't": true, "wasn't": true, "don't": true, "doesn't": true, "didn't": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "sharply": 1.4, "significantly": 1.3, "strongly": 1.3, "slightly": 0.6, "modestly": 0.7,
}

// LexiconScorer rates text with a weighted finance word list. A negation
// within three words before a term flips it; intensifiers scale it.
type LexiconScorer struct {
	Lexicon map[string]float64
	// Alpha controls how quickly the raw sum saturates toward +-1.
	Alpha float64
}

// NewLexiconScorer returns a scorer over the built-in lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{Lexicon: financeLexicon, Alpha: 15}
}

func (s *LexiconScorer) Score(_ context.Context, text string) (float64, error) {
	tokens := tokenize(text)
	sum := 0.0
	for i, tok := range tokens {
		w, ok := s.Lexicon[tok]
		if !ok {
			continue
		}
		for back := 1; back <= 3 && i-back >= 0; back++ {
			prev := tokens[i-back]
			if negations[prev] {
				w = -w * 0.75
				break
			}
			if m, ok := intensifiers[prev]; ok && back == 1 {
				w *= m
			}
		}
		sum += w
	}
	if sum == 0 {
		return 0, nil
	}
	return Clamp(sum / math.Sqrt(sum*sum+s.Alpha)), nil
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
