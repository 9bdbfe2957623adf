// Package config loads the YAML configuration, applies environment
// overrides and fills defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketOverview/internal/logger"
)

const appDir = "marketoverview"

// Config holds all application configuration.
type Config struct {
	EODHD struct {
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		RateLimit float64       `yaml:"rate_limit"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"eodhd"`
	Yahoo struct {
		Enabled bool          `yaml:"enabled"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"yahoo"`
	RSS struct {
		Enabled     bool          `yaml:"enabled"`
		URLTemplate string        `yaml:"url_template"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"rss"`
	Cache struct {
		Path string        `yaml:"path"`
		TTL  time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Fallback struct {
		Synthetic          bool          `yaml:"synthetic"`
		SyntheticAnalytics bool          `yaml:"synthetic_analytics"`
		Retries            int           `yaml:"retries"`
		Backoff            time.Duration `yaml:"backoff"`
	} `yaml:"fallback"`
	Analytics struct {
		RiskFreeRate float64 `yaml:"risk_free_rate"`
		HistoryDays  int     `yaml:"history_days"`
		NewsLimit    int     `yaml:"news_limit"`
	} `yaml:"analytics"`
	Sentiment struct {
		Scorer    string `yaml:"scorer"`
		Model     string `yaml:"model"`
		MaxTokens int    `yaml:"max_tokens"`
	} `yaml:"sentiment"`
	Anthropic struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"anthropic"`
	Benchmark struct {
		MaxPeers    int `yaml:"max_peers"`
		Concurrency int `yaml:"concurrency"`
	} `yaml:"benchmark"`
	Overview struct {
		FundamentalsTimeout time.Duration `yaml:"fundamentals_timeout"`
		PricesTimeout       time.Duration `yaml:"prices_timeout"`
		NewsTimeout         time.Duration `yaml:"news_timeout"`
	} `yaml:"overview"`
	Watchlist struct {
		Path string `yaml:"path"`
	} `yaml:"watchlist"`
	Discovery struct {
		UniversePath string `yaml:"universe_path"`
	} `yaml:"discovery"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		DigestCron  string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Server struct {
		Addr string `yaml:"addr"`
		Mode string `yaml:"mode"`
	} `yaml:"server"`
	Log struct {
		Env string `yaml:"env"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appDir, "config.yaml")
}

// LoadDotEnv loads KEY=VALUE pairs from the given files, or ./.env, into
// the environment without overriding variables already set.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Get().Debugw(".env not loaded", "error", err)
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := &Config{}
	// Both providers are on unless the file says otherwise.
	cfg.Yahoo.Enabled = true
	cfg.RSS.Enabled = true
	cfg.Fallback.Synthetic = true

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyEnv() {
	setString(&c.EODHD.APIKey, "EODHD_API_KEY")
	setString(&c.EODHD.BaseURL, "EODHD_BASE_URL")
	setString(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Proxy, "HTTPS_PROXY")
	setString(&c.Cache.Path, "CACHE_PATH")
	setString(&c.Watchlist.Path, "WATCHLIST_PATH")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Log.Env, "APP_ENV")
	setString(&c.Sentiment.Scorer, "SENTIMENT_SCORER")
	setString(&c.Schedule.RefreshCron, "CRON_REFRESH")
	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.Analytics.RiskFreeRate = rate
		}
	}
}

func (c *Config) applyDefaults() {
	if c.EODHD.BaseURL == "" {
		c.EODHD.BaseURL = "https://eodhd.com/api"
	}
	if c.EODHD.RateLimit == 0 {
		c.EODHD.RateLimit = 10
	}
	if c.EODHD.Timeout == 0 {
		c.EODHD.Timeout = 10 * time.Second
	}
	if c.Yahoo.Timeout == 0 {
		c.Yahoo.Timeout = 10 * time.Second
	}
	if c.RSS.Timeout == 0 {
		c.RSS.Timeout = 10 * time.Second
	}
	if c.Cache.Path == "" {
		c.Cache.Path = filepath.Join(xdg.CacheHome, appDir, "fundamentals.json")
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Fallback.Backoff == 0 {
		c.Fallback.Backoff = 500 * time.Millisecond
	}
	if c.Analytics.HistoryDays == 0 {
		c.Analytics.HistoryDays = 400
	}
	if c.Analytics.NewsLimit == 0 {
		c.Analytics.NewsLimit = 50
	}
	if c.Sentiment.Scorer == "" {
		c.Sentiment.Scorer = "lexicon"
	}
	if c.Benchmark.MaxPeers == 0 {
		c.Benchmark.MaxPeers = 8
	}
	if c.Benchmark.Concurrency == 0 {
		c.Benchmark.Concurrency = 4
	}
	if c.Overview.FundamentalsTimeout == 0 {
		c.Overview.FundamentalsTimeout = 20 * time.Second
	}
	if c.Overview.PricesTimeout == 0 {
		c.Overview.PricesTimeout = 15 * time.Second
	}
	if c.Overview.NewsTimeout == 0 {
		c.Overview.NewsTimeout = 15 * time.Second
	}
	if c.Watchlist.Path == "" {
		c.Watchlist.Path = filepath.Join(xdg.DataHome, appDir, "watchlist.db")
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 6 * * *"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Log.Env == "" {
		c.Log.Env = "development"
	}
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	switch c.Sentiment.Scorer {
	case "lexicon":
	case "claude":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("anthropic.api_key is required when sentiment.scorer is claude")
		}
	default:
		return fmt.Errorf("sentiment.scorer must be lexicon or claude, got %q", c.Sentiment.Scorer)
	}
	if c.Analytics.RiskFreeRate < 0 || c.Analytics.RiskFreeRate >= 1 {
		return fmt.Errorf("analytics.risk_free_rate must be in [0, 1)")
	}
	if c.Analytics.HistoryDays < 60 {
		return fmt.Errorf("analytics.history_days must be at least 60")
	}
	if c.EODHD.RateLimit < 0 {
		return fmt.Errorf("eodhd.rate_limit must not be negative")
	}
	if c.Fallback.Retries < 0 {
		return fmt.Errorf("fallback.retries must not be negative")
	}
	if c.Benchmark.MaxPeers < 3 {
		return fmt.Errorf("benchmark.max_peers must be at least 3")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test")
	}
	return nil
}

// TelegramEnabled reports whether digests and chat commands can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
