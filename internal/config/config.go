// Package config loads and validates bot configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/fingerprint"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/tracker"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/providers"
)

// Tracker backends selectable via tracker.backend.
const (
	BackendFile = "file"
	BackendBolt = "bolt"
)

// dateLayout is the accepted form of target_date.
const dateLayout = "2006-01-02"

// Config captures all knobs loaded via Viper. File values are overridden by
// NEWSBOT_* environment variables; the legacy unprefixed TELEGRAM_BOT_TOKEN,
// TELEGRAM_CHAT_ID and TARGET_DATE variables are honored too.
type Config struct {
	TargetDate     string             `mapstructure:"target_date"`
	Provider       providers.Provider `mapstructure:"provider"`
	HTTP           HTTPConfig         `mapstructure:"http"`
	Tracker        TrackerConfig      `mapstructure:"tracker"`
	Fingerprint    FingerprintConfig  `mapstructure:"fingerprint"`
	Telegram       TelegramConfig     `mapstructure:"telegram"`
	PublishersFile string             `mapstructure:"publishers_file"`
	Logging        LoggingConfig      `mapstructure:"logging"`
}

// HTTPConfig configures outbound HTTP behavior.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// TrackerConfig controls the sent-article store.
type TrackerConfig struct {
	Backend       string `mapstructure:"backend"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// FingerprintConfig tunes content fingerprints. Length 0 keeps the full
// digest; a positive value truncates to that many hex characters.
type FingerprintConfig struct {
	Length int `mapstructure:"length"`
}

// TelegramConfig holds the default delivery credentials, used when no
// publishers file is configured.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment. An empty path skips the file
// and reads defaults plus environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindLegacyEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target_date", "")
	v.SetDefault("provider.id", "newsfirst")
	v.SetDefault("provider.type", providers.ProviderTypeArchive)
	v.SetDefault("provider.source_url", "https://english.newsfirst.lk")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("tracker.backend", BackendFile)
	v.SetDefault("tracker.path", tracker.DefaultStorePath)
	v.SetDefault("tracker.retention_days", 7)
	v.SetDefault("fingerprint.length", 0)
	v.SetDefault("publishers_file", "")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
}

// bindLegacyEnv keeps the original unprefixed variable names working
// alongside the NEWSBOT_* forms.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("telegram.bot_token", "NEWSBOT_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "NEWSBOT_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
	_ = v.BindEnv("target_date", "NEWSBOT_TARGET_DATE", "TARGET_DATE")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Provider.SourceURL) == "" {
		return fmt.Errorf("provider.source_url must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	switch c.Tracker.Backend {
	case BackendFile, BackendBolt:
	default:
		return fmt.Errorf("tracker.backend must be %q or %q", BackendFile, BackendBolt)
	}
	if strings.TrimSpace(c.Tracker.Path) == "" {
		return fmt.Errorf("tracker.path must be set")
	}
	if c.Tracker.RetentionDays <= 0 {
		return fmt.Errorf("tracker.retention_days must be > 0")
	}
	if c.Fingerprint.Length < 0 || c.Fingerprint.Length > fingerprint.HexLength {
		return fmt.Errorf("fingerprint.length must be between 0 and %d", fingerprint.HexLength)
	}
	if c.TargetDate != "" {
		if _, err := time.Parse(dateLayout, strings.TrimSpace(c.TargetDate)); err != nil {
			return fmt.Errorf("invalid target date %q: use YYYY-MM-DD", c.TargetDate)
		}
	}
	if c.PublishersFile == "" {
		if strings.TrimSpace(c.Telegram.BotToken) == "" || strings.TrimSpace(c.Telegram.ChatID) == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set when no publishers file is configured")
		}
	}
	return nil
}

// TargetDay resolves the configured target date, defaulting to the current
// UTC day when unset.
func (c Config) TargetDay(now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.TargetDate)
	if raw == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid target date %q: use YYYY-MM-DD", raw)
	}
	return day, nil
}

// HTTPTimeout converts the configured timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Retention converts the configured retention window into a duration.
func (c Config) Retention() time.Duration {
	return time.Duration(c.Tracker.RetentionDays) * 24 * time.Hour
}
