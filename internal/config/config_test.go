package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Config{}
	cfg.Provider.ID = "newsfirst"
	cfg.Provider.Type = "archive"
	cfg.Provider.SourceURL = "https://english.newsfirst.lk"
	cfg.HTTP.TimeoutSeconds = 15
	cfg.Tracker.Backend = BackendFile
	cfg.Tracker.Path = "sent_articles.json"
	cfg.Tracker.RetentionDays = 7
	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.ChatID = "@channel"
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "@channel")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "newsfirst", cfg.Provider.ID)
	assert.Equal(t, "archive", cfg.Provider.Type)
	assert.Equal(t, "https://english.newsfirst.lk", cfg.Provider.SourceURL)
	assert.Equal(t, 15, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, BackendFile, cfg.Tracker.Backend)
	assert.Equal(t, "sent_articles.json", cfg.Tracker.Path)
	assert.Equal(t, 7, cfg.Tracker.RetentionDays)
	assert.Equal(t, 0, cfg.Fingerprint.Length)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "@channel", cfg.Telegram.ChatID)
}

func TestLoadMissingTelegramCreds(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
target_date: "2025-08-26"
provider:
  id: example
  type: rss
  source_url: https://example.com/feed.xml
  headers:
    X-Token: secret
http:
  timeout_seconds: 5
tracker:
  backend: bolt
  path: state/sent.db
  retention_days: 14
fingerprint:
  length: 16
publishers_file: publishers.yaml
logging:
  development: true
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2025-08-26", cfg.TargetDate)
	assert.Equal(t, "example", cfg.Provider.ID)
	assert.Equal(t, "rss", cfg.Provider.Type)
	assert.Equal(t, "https://example.com/feed.xml", cfg.Provider.SourceURL)
	assert.Equal(t, map[string]string{"X-Token": "secret"}, cfg.Provider.Headers)
	assert.Equal(t, 5, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, BackendBolt, cfg.Tracker.Backend)
	assert.Equal(t, "state/sent.db", cfg.Tracker.Path)
	assert.Equal(t, 14, cfg.Tracker.RetentionDays)
	assert.Equal(t, 16, cfg.Fingerprint.Length)
	assert.Equal(t, "publishers.yaml", cfg.PublishersFile)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "@channel")
	t.Setenv("NEWSBOT_PROVIDER_SOURCE_URL", "https://news.example.org")
	t.Setenv("NEWSBOT_TRACKER_RETENTION_DAYS", "3")
	t.Setenv("NEWSBOT_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://news.example.org", cfg.Provider.SourceURL)
	assert.Equal(t, 3, cfg.Tracker.RetentionDays)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLegacyEnvNames(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "legacy-token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")
	t.Setenv("TARGET_DATE", "2025-08-25")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "legacy-token", cfg.Telegram.BotToken)
	assert.Equal(t, "-100200300", cfg.Telegram.ChatID)
	assert.Equal(t, "2025-08-25", cfg.TargetDate)
}

func TestPrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "legacy-token")
	t.Setenv("NEWSBOT_TELEGRAM_BOT_TOKEN", "prefixed-token")
	t.Setenv("TELEGRAM_CHAT_ID", "@channel")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "prefixed-token", cfg.Telegram.BotToken)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing source url",
			mutate:  func(c *Config) { c.Provider.SourceURL = " " },
			wantErr: "provider.source_url",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.HTTP.TimeoutSeconds = 0 },
			wantErr: "http.timeout_seconds",
		},
		{
			name:    "unknown tracker backend",
			mutate:  func(c *Config) { c.Tracker.Backend = "redis" },
			wantErr: "tracker.backend",
		},
		{
			name:    "missing tracker path",
			mutate:  func(c *Config) { c.Tracker.Path = "" },
			wantErr: "tracker.path",
		},
		{
			name:    "zero retention",
			mutate:  func(c *Config) { c.Tracker.RetentionDays = 0 },
			wantErr: "tracker.retention_days",
		},
		{
			name:    "fingerprint length too long",
			mutate:  func(c *Config) { c.Fingerprint.Length = 65 },
			wantErr: "fingerprint.length",
		},
		{
			name:    "negative fingerprint length",
			mutate:  func(c *Config) { c.Fingerprint.Length = -1 },
			wantErr: "fingerprint.length",
		},
		{
			name:    "malformed target date",
			mutate:  func(c *Config) { c.TargetDate = "26-08-2025" },
			wantErr: "YYYY-MM-DD",
		},
		{
			name: "missing creds without publishers file",
			mutate: func(c *Config) {
				c.Telegram.BotToken = ""
				c.Telegram.ChatID = ""
			},
			wantErr: "TELEGRAM_BOT_TOKEN",
		},
		{
			name: "publishers file waives creds",
			mutate: func(c *Config) {
				c.Telegram.BotToken = ""
				c.Telegram.ChatID = ""
				c.PublishersFile = "publishers.yaml"
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestTargetDay(t *testing.T) {
	// 01:00 on the 27th in Colombo is still the 26th in UTC.
	now := time.Date(2025, 8, 27, 1, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	cfg := validConfig()
	day, err := cfg.TargetDay(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC), day)

	cfg.TargetDate = "2024-01-05"
	day, err = cfg.TargetDay(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), day)

	cfg.TargetDate = "not-a-date"
	_, err = cfg.TargetDay(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestDurationHelpers(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.TimeoutSeconds = 5
	cfg.Tracker.RetentionDays = 3

	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 3*24*time.Hour, cfg.Retention())
}
