package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"MarketOverview/internal/model"
)

func fmtPtr(v *float64, format string) string {
	if v == nil {
		return model.Unknown
	}
	return fmt.Sprintf(format, *v)
}

func esc(s string) string { return html.EscapeString(s) }

// FormatOverview renders an overview as a Telegram HTML message.
func FormatOverview(ov *model.Overview) string {
	var b strings.Builder
	f := ov.Fundamentals
	a := ov.Analytics

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n", esc(ov.Ticker), esc(f.Name.String())))
	b.WriteString(fmt.Sprintf("%s · %s · %s\n\n", esc(f.Sector.String()), esc(f.Industry.String()), esc(f.Country.String())))

	b.WriteString(fmt.Sprintf("Price: %s | Trend 30d: %s\n", fmtPtr(a.LastClose, "%.2f"), fmtPtr(a.Trend30, "%+.2f%%")))
	b.WriteString(fmt.Sprintf("SMA20: %s | SMA50: %s | RSI14: %s\n",
		fmtPtr(a.SMA20, "%.2f"), fmtPtr(a.SMA50, "%.2f"), fmtPtr(a.RSI14, "%.1f")))
	b.WriteString(fmt.Sprintf("Volatility: %s | Sharpe: %s\n", fmtPtr(a.Volatility, "%.4f"), fmtPtr(a.Sharpe, "%.4f")))
	b.WriteString(fmt.Sprintf("P/E: %s | EPS: %s\n", f.PERatio, f.EPS))

	if s := ov.CompetitorStats; s != nil {
		b.WriteString(fmt.Sprintf("Peers P/E: avg %.2f (min %.2f, max %.2f, n=%d)\n", s.AvgPE, s.MinPE, s.MaxPE, s.Count))
	}
	if s := ov.Sentiment; s != nil {
		b.WriteString(fmt.Sprintf("Sentiment: %s (%.3f over %d headlines)\n", s.Label, s.AvgScore, s.Count))
	}
	if sc := ov.Score; sc != nil {
		b.WriteString(fmt.Sprintf("\n💡 <b>Score:</b> %+.3f %s\n", sc.TotalScore, esc(sc.Tier.Label)))
		for _, fs := range sc.Factors {
			b.WriteString(fmt.Sprintf("  %s(%s): %+.1f (×%.2f) = %+.3f\n",
				fs.Name, esc(fs.Commentary), fs.RawScore, fs.Weight, fs.Weighted))
		}
		if sc.WarningMsg != "" {
			b.WriteString(fmt.Sprintf("⚠️ %s\n", esc(sc.WarningMsg)))
		}
	}
	if ov.Narrative != "" {
		b.WriteString("\n" + esc(ov.Narrative) + "\n")
	}
	b.WriteString(sourcesLine(ov.Sources))
	return b.String()
}

func sourcesLine(src map[model.FetchKind]model.Tier) string {
	if len(src) == 0 {
		return ""
	}
	kinds := make([]string, 0, len(src))
	for k := range src {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%s", k, src[model.FetchKind(k)]))
	}
	return "\n<i>sources: " + strings.Join(parts, ", ") + "</i>\n"
}

// FormatComparison renders two securities side by side.
func FormatComparison(c *model.Comparison) string {
	var b strings.Builder
	a, z := c.Tickers[0], c.Tickers[1]
	b.WriteString(fmt.Sprintf("⚖️ <b>%s vs %s</b>\n\n", esc(a), esc(z)))

	row := func(label string, get func(t string) string) {
		b.WriteString(fmt.Sprintf("%-12s %12s %12s\n", label, get(a), get(z)))
	}
	b.WriteString("<pre>")
	row("", func(t string) string { return t })
	row("Price", func(t string) string { return fmtPtr(c.Metrics[t].LastClose, "%.2f") })
	row("Trend 30d", func(t string) string { return fmtPtr(c.Metrics[t].Trend30, "%+.2f%%") })
	row("RSI14", func(t string) string { return fmtPtr(c.Metrics[t].RSI14, "%.1f") })
	row("Volatility", func(t string) string { return fmtPtr(c.Metrics[t].Volatility, "%.4f") })
	row("Sharpe", func(t string) string { return fmtPtr(c.Metrics[t].Sharpe, "%.4f") })
	row("P/E", func(t string) string { return c.Fundamentals[t].PERatio.String() })
	row("Sentiment", func(t string) string {
		if s := c.Sentiment[t]; s != nil {
			return fmt.Sprintf("%.3f", s.AvgScore)
		}
		return model.Unknown
	})
	row("Score", func(t string) string {
		if s := c.Scores[t]; s != nil {
			return fmt.Sprintf("%+.3f", s.TotalScore)
		}
		return model.Unknown
	})
	b.WriteString("</pre>\n")

	if c.ScoreDelta != nil {
		b.WriteString(fmt.Sprintf("Score delta (%s − %s): %+.3f\n", esc(a), esc(z), *c.ScoreDelta))
	}
	if c.SentimentDelta != nil {
		b.WriteString(fmt.Sprintf("Sentiment delta (%s − %s): %+.3f\n", esc(a), esc(z), *c.SentimentDelta))
	}
	if n := len(c.Relative); n > 0 {
		last := c.Relative[n-1]
		b.WriteString(fmt.Sprintf("Relative since %s (base 100): %.2f vs %.2f\n",
			c.Relative[0].Date.Format("2006-01-02"), last.A, last.B))
	}
	return b.String()
}

// FormatDigest summarises several overviews in one message.
func FormatDigest(overviews []*model.Overview, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Watchlist digest</b> | %s\n\n", at.Format("2006-01-02")))
	if len(overviews) == 0 {
		b.WriteString("Watchlist is empty.")
		return b.String()
	}
	for _, ov := range overviews {
		line := fmt.Sprintf("<b>%s</b> %s", esc(ov.Ticker), fmtPtr(ov.Analytics.LastClose, "%.2f"))
		if ov.Analytics.Trend30 != nil {
			line += fmt.Sprintf(" (%+.2f%% 30d)", *ov.Analytics.Trend30)
		}
		if ov.Score != nil {
			line += fmt.Sprintf(" · %s %+.3f", esc(ov.Score.Tier.Label), ov.Score.TotalScore)
		}
		if ov.Sentiment != nil {
			line += " · " + ov.Sentiment.Label
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatNews renders headlines, newest first as given.
func FormatNews(ticker string, items []model.NewsItem, limit int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📰 <b>%s news</b>\n\n", esc(ticker)))
	if len(items) == 0 {
		b.WriteString("No headlines.")
		return b.String()
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for _, it := range items {
		date := ""
		if !it.PublishedAt.IsZero() {
			date = it.PublishedAt.Format("2006-01-02") + " "
		}
		b.WriteString(fmt.Sprintf("• %s%s\n", date, esc(it.Title)))
	}
	return b.String()
}
