package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketOverview/internal/logger"
)

func init() { logger.Init("test") }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://eodhd.com/api", cfg.EODHD.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.EODHD.Timeout)
	assert.True(t, cfg.Yahoo.Enabled)
	assert.True(t, cfg.RSS.Enabled)
	assert.True(t, cfg.Fallback.Synthetic)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "lexicon", cfg.Sentiment.Scorer)
	assert.Equal(t, 8, cfg.Benchmark.MaxPeers)
	assert.Equal(t, 400, cfg.Analytics.HistoryDays)
	assert.Equal(t, "0 0 6 * * *", cfg.Schedule.RefreshCron)
	assert.Equal(t, "fundamentals.json", filepath.Base(cfg.Cache.Path))
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
eodhd:
  api_key: from-file
  timeout: 3s
yahoo:
  enabled: false
fallback:
  synthetic: false
  retries: 2
  backoff: 250ms
analytics:
  risk_free_rate: 0.04
sentiment:
  scorer: claude
overview:
  prices_timeout: 5s
server:
  mode: debug
`)
	t.Setenv("EODHD_API_KEY", "from-env")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("CACHE_PATH", "/tmp/x/cache.json")
	t.Setenv("CRON_REFRESH", "0 30 5 * * *")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-env", cfg.EODHD.APIKey)
	assert.Equal(t, 3*time.Second, cfg.EODHD.Timeout)
	assert.False(t, cfg.Yahoo.Enabled)
	assert.False(t, cfg.Fallback.Synthetic)
	assert.Equal(t, 2, cfg.Fallback.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Fallback.Backoff)
	assert.Equal(t, 0.04, cfg.Analytics.RiskFreeRate)
	assert.Equal(t, "claude", cfg.Sentiment.Scorer)
	assert.Equal(t, "sk-test", cfg.Anthropic.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Overview.PricesTimeout)
	assert.Equal(t, 20*time.Second, cfg.Overview.FundamentalsTimeout)
	assert.Equal(t, "/tmp/x/cache.json", cfg.Cache.Path)
	assert.Equal(t, "0 30 5 * * *", cfg.Schedule.RefreshCron)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "eodhd: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown scorer", func(c *Config) { c.Sentiment.Scorer = "magic" }},
		{"claude without key", func(c *Config) { c.Sentiment.Scorer = "claude"; c.Anthropic.APIKey = "" }},
		{"risk free out of range", func(c *Config) { c.Analytics.RiskFreeRate = 1.5 }},
		{"short history", func(c *Config) { c.Analytics.HistoryDays = 10 }},
		{"negative retries", func(c *Config) { c.Fallback.Retries = -1 }},
		{"too few peers", func(c *Config) { c.Benchmark.MaxPeers = 2 }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "t" }},
		{"bad server mode", func(c *Config) { c.Server.Mode = "prod" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TELEGRAM_CHAT_ID=99\n"), 0o644))
	t.Setenv("TELEGRAM_CHAT_ID", "")
	os.Unsetenv("TELEGRAM_CHAT_ID")

	LoadDotEnv(path)
	assert.Equal(t, "99", os.Getenv("TELEGRAM_CHAT_ID"))
}
