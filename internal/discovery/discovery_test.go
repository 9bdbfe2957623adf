package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
)

func init() { logger.Init("test") }

func tickers[T any](items []T, get func(T) string) []string {
	out := []string{}
	for _, it := range items {
		out = append(out, get(it))
	}
	return out
}

func TestFindETFs_ByTheme(t *testing.T) {
	u := Default()
	got := u.FindETFs("Metals")
	assert.Equal(t, []string{"GLD.US", "SLV.US", "IAU.US"}, tickers(got, func(e model.ETF) string { return e.Ticker }))

	got = u.FindETFs("gold")
	assert.Equal(t, []string{"GLD.US", "IAU.US"}, tickers(got, func(e model.ETF) string { return e.Ticker }))
}

func TestFindETFs_FallsBackToName(t *testing.T) {
	u := Default()
	got := u.FindETFs("treasur")
	require.Len(t, got, 1)
	assert.Equal(t, "TLT.US", got[0].Ticker)

	assert.Empty(t, u.FindETFs("crypto"))
	assert.Empty(t, u.FindETFs("  "))
}

func TestSearchTickers(t *testing.T) {
	u := Default()
	got := u.SearchTickers("x", []string{"xom.us", "MSFT.US"})
	names := tickers(got, func(m Match) string { return m.Ticker })
	// DBC matches through "Index" in its name.
	assert.Equal(t, []string{"XOM.US", "XLK.US", "XLE.US", "XLF.US", "DBC.US"}, names)
	assert.Equal(t, "watchlist", got[0].Origin)

	got = u.SearchTickers("vanguard", nil)
	require.Len(t, got, 1)
	assert.Equal(t, "BND.US", got[0].Ticker)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etfs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
etfs:
  - ticker: arkk.us
    name: ARK Innovation ETF
    themes: [Innovation, Tech]
  - name: missing ticker
`), 0o644))

	u, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"innovation", "tech"}, u.Themes())
	got := u.FindETFs("innovation")
	require.Len(t, got, 1)
	assert.Equal(t, "ARKK.US", got[0].Ticker)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := Load("")
	require.NoError(t, err)
	assert.Contains(t, def.Themes(), "bonds")
}
