package sentiment

import (
	"strings"

	"MarketOverview/internal/model"
)

// marketKeywords mark headlines that matter even without naming the company.
var marketKeywords = []string{"earnings", "forecast", "upgrade", "downgrade", "guidance"}

// Relevant keeps items that mention the ticker root or company name, or
// carry a market keyword in the title. When nothing matches, items are
// returned unchanged.
func Relevant(items []model.NewsItem, ticker, name string) []model.NewsItem {
	root, _, _ := strings.Cut(strings.ToLower(ticker), ".")
	name = strings.ToLower(firstWord(name))

	var out []model.NewsItem
	for _, it := range items {
		title := strings.ToLower(it.Title)
		body := strings.ToLower(it.Body)
		switch {
		case root != "" && (containsWord(title, root) || containsWord(body, root)):
		case len(name) > 2 && (strings.Contains(title, name) || strings.Contains(body, name)):
		case containsAny(title, marketKeywords):
		default:
			continue
		}
		out = append(out, it)
	}
	if len(out) == 0 {
		return items
	}
	return out
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ",.")
}

func containsWord(text, word string) bool {
	for _, tok := range tokenize(text) {
		if tok == word {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
