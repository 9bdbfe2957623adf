package overview

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"MarketOverview/internal/model"
)

// ExcerptSentences is how many description sentences the narrative keeps.
const ExcerptSentences = 2

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// Narrative returns the overview sentences in fixed order: description
// excerpt, 30-day trend, sentiment and P/E against the peer average. A
// sentence is omitted when its data is absent.
func Narrative(f model.Fundamentals, trend *float64, mood *model.SentimentResult, peers *model.CompetitorStats) []string {
	out := []string{}
	if f.Description.Known && strings.TrimSpace(f.Description.Value) != "" {
		out = append(out, Excerpt(f.Description.Value, ExcerptSentences))
	}
	if trend != nil {
		switch {
		case *trend > 0:
			out = append(out, fmt.Sprintf("The price rose %s%% over the last 30 days.", num(*trend)))
		case *trend < 0:
			out = append(out, fmt.Sprintf("The price fell %s%% over the last 30 days.", num(-*trend)))
		default:
			out = append(out, "The price was unchanged over the last 30 days.")
		}
	}
	if mood != nil {
		out = append(out, fmt.Sprintf("Market sentiment is %s (average %s).", mood.Label, num(mood.AvgScore)))
	}
	if peers != nil && f.PERatio.Known && f.PERatio.Value != 0 && peers.AvgPE != 0 {
		pe := f.PERatio.Value
		switch {
		case pe > peers.AvgPE:
			out = append(out, fmt.Sprintf("The current P/E (%s) is above the peer average (%s).", num(pe), num(peers.AvgPE)))
		case pe < peers.AvgPE:
			out = append(out, fmt.Sprintf("The current P/E (%s) is below the peer average (%s).", num(pe), num(peers.AvgPE)))
		}
	}
	return out
}

// Excerpt keeps the n sentences of text whose words are most frequent
// across the whole text, ranked highest first. Text with n sentences or
// fewer is returned as is.
func Excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	sentences := splitSentences(text)
	if len(sentences) <= n {
		return text
	}

	freq := map[string]int{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		freq[w]++
	}
	type ranked struct {
		score int
		text  string
	}
	rs := make([]ranked, len(sentences))
	for i, s := range sentences {
		for _, w := range strings.Fields(strings.ToLower(s)) {
			rs[i].score += freq[w]
		}
		rs[i].text = s
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].score > rs[j].score })

	top := make([]string, 0, n)
	for _, r := range rs[:n] {
		top = append(top, r.text)
	}
	return strings.Join(top, " ")
}

func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		out = append(out, strings.TrimSpace(text[last:loc[0]+1]))
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func joinSentences(s []string) string {
	return strings.Join(s, " ")
}

func num(v float64) string {
	return model.Num(v).String()
}
