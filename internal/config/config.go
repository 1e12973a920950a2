package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required,notEmpty"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Recommendation service
	Recommender Recommender

	// Conversation
	PreviewDir         string        `env:"PREVIEW_DIR" envDefault:"previews"`
	MaxAttachments     int           `env:"MAX_ATTACHMENTS" envDefault:"10"`
	AckDelay           time.Duration `env:"ACK_DELAY" envDefault:"800ms"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"1h"`
	SyncServerCart     bool          `env:"SYNC_SERVER_CART" envDefault:"false"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Rate limit (per chat, per minute)
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`

	// Bot behavior
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int   `env:"LOG_TOPIC_ERROR"`
	LogTopicSelection int   `env:"LOG_TOPIC_SELECTION"`
}

// Recommender holds the settings shared by the bot and recctl.
type Recommender struct {
	URL         string        `env:"RECOMMENDER_URL" envDefault:"http://localhost:8000"`
	Timeout     time.Duration `env:"RECOMMENDER_TIMEOUT" envDefault:"90s"`
	ClientName  string        `env:"CLIENT_NAME"`
	UploadNotes string        `env:"UPLOAD_NOTES" envDefault:"uploaded from UI"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.MaxAttachments <= 0 {
		return nil, fmt.Errorf("parse config: MAX_ATTACHMENTS must be positive, got %d", cfg.MaxAttachments)
	}
	return cfg, nil
}

// LoadRecommender parses only the recommendation service settings, so tools
// that never talk to Telegram do not need BOT_TOKEN.
func LoadRecommender() (*Recommender, error) {
	cfg := &Recommender{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse recommender config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) AdminIDsString() string {
	parts := make([]string, len(c.AdminIDs))
	for i, id := range c.AdminIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// SlogLevel maps LOG_LEVEL onto slog; unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
