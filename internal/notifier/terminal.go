package notifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"MarketOverview/internal/model"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorRed     = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#F25D5D"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	labelStyle = lipgloss.NewStyle().Foreground(colorDim).Width(14)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	upStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	downStyle  = lipgloss.NewStyle().Foreground(colorRed)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
)

func signed(v *float64, format string) string {
	s := fmtPtr(v, format)
	switch {
	case v == nil:
		return s
	case *v > 0:
		return upStyle.Render(s)
	case *v < 0:
		return downStyle.Render(s)
	}
	return s
}

func kv(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// RenderOverview draws an overview for the terminal.
func RenderOverview(ov *model.Overview) string {
	f, a := ov.Fundamentals, ov.Analytics
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s  %s", ov.Ticker, f.Name)),
		dimStyle.Render(fmt.Sprintf("%s · %s · %s", f.Sector, f.Industry, f.Country)),
		"",
		kv("Price", fmtPtr(a.LastClose, "%.2f")),
		kv("Trend 30d", signed(a.Trend30, "%+.2f%%")),
		kv("SMA20/50", fmt.Sprintf("%s / %s", fmtPtr(a.SMA20, "%.2f"), fmtPtr(a.SMA50, "%.2f"))),
		kv("EMA20", fmtPtr(a.EMA20, "%.2f")),
		kv("RSI14", fmtPtr(a.RSI14, "%.2f")),
		kv("Volatility", fmtPtr(a.Volatility, "%.4f")),
		kv("Sharpe", signed(a.Sharpe, "%.4f")),
		kv("52w range", fmt.Sprintf("%s - %s (%s)", fmtPtr(a.Low52w, "%.2f"), fmtPtr(a.High52w, "%.2f"), fmtPtr(a.Position52w, "%.2f"))),
		kv("Market cap", f.MarketCap.String()),
		kv("P/E", f.PERatio.String()),
		kv("EPS", f.EPS.String()),
		kv("Margin", f.ProfitMargin.String()),
	}
	if s := ov.CompetitorStats; s != nil {
		lines = append(lines, kv("Peers P/E", fmt.Sprintf("avg %.2f  min %.2f  max %.2f", s.AvgPE, s.MinPE, s.MaxPE)))
	}
	if len(ov.Competitors) > 0 {
		lines = append(lines, kv("Competitors", strings.Join(ov.Competitors, ", ")))
	}
	if s := ov.Sentiment; s != nil {
		v := s.AvgScore
		lines = append(lines, kv("Sentiment", fmt.Sprintf("%s %s", s.Label, signed(&v, "%.3f"))))
	}
	if sc := ov.Score; sc != nil {
		v := sc.TotalScore
		lines = append(lines, kv("Score", fmt.Sprintf("%s %s", signed(&v, "%+.3f"), sc.Tier.Label)))
		if sc.WarningMsg != "" {
			lines = append(lines, downStyle.Render(sc.WarningMsg))
		}
	}
	body := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	out := []string{body}
	if ov.Narrative != "" {
		out = append(out, lipgloss.NewStyle().Width(80).Render(ov.Narrative))
	}
	out = append(out, dimStyle.Render(plainSources(ov.Sources)))
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func plainSources(src map[model.FetchKind]model.Tier) string {
	kinds := make([]string, 0, len(src))
	for k := range src {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%s", k, src[model.FetchKind(k)]))
	}
	return "sources: " + strings.Join(parts, ", ")
}

// RenderComparison draws a two-column comparison table.
func RenderComparison(c *model.Comparison) string {
	a, z := c.Tickers[0], c.Tickers[1]
	row := func(label string, get func(t string) string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), cellStyle.Render(get(a)), cellStyle.Render(get(z)))
	}
	score := func(t string) string {
		if s := c.Scores[t]; s != nil {
			return fmt.Sprintf("%+.3f", s.TotalScore)
		}
		return model.Unknown
	}
	mood := func(t string) string {
		if s := c.Sentiment[t]; s != nil {
			return fmt.Sprintf("%.3f", s.AvgScore)
		}
		return model.Unknown
	}
	rows := []string{
		row("", func(t string) string { return titleStyle.Render(t) }),
		row("Price", func(t string) string { return fmtPtr(c.Metrics[t].LastClose, "%.2f") }),
		row("Trend 30d", func(t string) string { return fmtPtr(c.Metrics[t].Trend30, "%+.2f%%") }),
		row("RSI14", func(t string) string { return fmtPtr(c.Metrics[t].RSI14, "%.2f") }),
		row("Volatility", func(t string) string { return fmtPtr(c.Metrics[t].Volatility, "%.4f") }),
		row("Sharpe", func(t string) string { return fmtPtr(c.Metrics[t].Sharpe, "%.4f") }),
		row("P/E", func(t string) string { return c.Fundamentals[t].PERatio.String() }),
		row("Sentiment", mood),
		row("Score", score),
	}
	if c.ScoreDelta != nil {
		rows = append(rows, kv("Score Δ", signed(c.ScoreDelta, "%+.3f")))
	}
	if c.SentimentDelta != nil {
		rows = append(rows, kv("Sentiment Δ", signed(c.SentimentDelta, "%+.3f")))
	}
	if n := len(c.Relative); n > 0 {
		last := c.Relative[n-1]
		rows = append(rows, kv("Relative", fmt.Sprintf("%.2f vs %.2f since %s",
			last.A, last.B, c.Relative[0].Date.Format("2006-01-02"))))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// RenderNews lists headlines for the terminal.
func RenderNews(ticker string, items []model.NewsItem) string {
	lines := []string{titleStyle.Render(ticker + " news")}
	if len(items) == 0 {
		lines = append(lines, dimStyle.Render("no headlines"))
	}
	for _, it := range items {
		date := "          "
		if !it.PublishedAt.IsZero() {
			date = it.PublishedAt.Format("2006-01-02")
		}
		lines = append(lines, fmt.Sprintf("%s  %s", dimStyle.Render(date), it.Title))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderWatchlist groups favorites by category.
func RenderWatchlist(favs []model.Favorite) string {
	if len(favs) == 0 {
		return dimStyle.Render("watchlist is empty")
	}
	byCat := map[string][]string{}
	var cats []string
	for _, f := range favs {
		if _, ok := byCat[f.Category]; !ok {
			cats = append(cats, f.Category)
		}
		byCat[f.Category] = append(byCat[f.Category], f.Ticker)
	}
	sort.Strings(cats)
	lines := make([]string, 0, len(cats))
	for _, c := range cats {
		lines = append(lines, kv(c, strings.Join(byCat[c], ", ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderETFs lists ETFs with their themes. With no ETFs it lists the
// available themes instead.
func RenderETFs(etfs []model.ETF, themes []string) string {
	if len(etfs) == 0 {
		return dimStyle.Render("themes: " + strings.Join(themes, ", "))
	}
	lines := make([]string, 0, len(etfs))
	for _, e := range etfs {
		lines = append(lines, fmt.Sprintf("%s  %s %s",
			titleStyle.Width(10).Render(e.Ticker), e.Name, dimStyle.Render("["+strings.Join(e.Themes, ", ")+"]")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderHistory lists recorded snapshots, newest first.
func RenderHistory(ticker string, snaps []model.Snapshot) string {
	lines := []string{titleStyle.Render(ticker + " history")}
	if len(snaps) == 0 {
		lines = append(lines, dimStyle.Render("no snapshots"))
	}
	for _, s := range snaps {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(s.TakenAt.Format("2006-01-02")),
			cellStyle.Render(fmtPtr(s.LastClose, "%.2f")),
			cellStyle.Render(signed(s.TotalScore, "%+.3f")),
			"  "+s.Tier,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
