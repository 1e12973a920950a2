package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Recommender.URL != "http://localhost:8000" {
		t.Errorf("Recommender.URL = %q", cfg.Recommender.URL)
	}
	if cfg.Recommender.Timeout != 90*time.Second {
		t.Errorf("Recommender.Timeout = %v", cfg.Recommender.Timeout)
	}
	if cfg.Recommender.UploadNotes != "uploaded from UI" {
		t.Errorf("UploadNotes = %q", cfg.Recommender.UploadNotes)
	}
	if cfg.MaxAttachments != 10 {
		t.Errorf("MaxAttachments = %d, want 10", cfg.MaxAttachments)
	}
	if cfg.AckDelay != 800*time.Millisecond {
		t.Errorf("AckDelay = %v, want 800ms", cfg.AckDelay)
	}
	if cfg.SessionIdleTimeout != time.Hour {
		t.Errorf("SessionIdleTimeout = %v", cfg.SessionIdleTimeout)
	}
	if cfg.SyncServerCart {
		t.Error("SyncServerCart should default to false")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("RECOMMENDER_URL", "http://reco:9000/")
	t.Setenv("MAX_ATTACHMENTS", "3")
	t.Setenv("ACK_DELAY", "2s")
	t.Setenv("ADMIN_IDS", "10,20")
	t.Setenv("SYNC_SERVER_CART", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Recommender.URL != "http://reco:9000/" {
		t.Errorf("Recommender.URL = %q", cfg.Recommender.URL)
	}
	if cfg.MaxAttachments != 3 || cfg.AckDelay != 2*time.Second || !cfg.SyncServerCart {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.IsAdmin(20) || cfg.IsAdmin(30) {
		t.Errorf("IsAdmin wrong for %v", cfg.AdminIDs)
	}
	if got := cfg.AdminIDsString(); got != "10,20" {
		t.Errorf("AdminIDsString() = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		if _, err := Load(); err == nil {
			t.Error("expected error without BOT_TOKEN")
		}
	})
	t.Run("zero attachment limit", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "123:abc")
		t.Setenv("MAX_ATTACHMENTS", "0")
		if _, err := Load(); err == nil {
			t.Error("expected error for MAX_ATTACHMENTS=0")
		}
	})
}

func TestLoadRecommenderWithoutToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("CLIENT_NAME", "Anna")

	cfg, err := LoadRecommender()
	if err != nil {
		t.Fatalf("LoadRecommender failed: %v", err)
	}
	if cfg.ClientName != "Anna" {
		t.Errorf("ClientName = %q", cfg.ClientName)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		c := &Config{LogLevel: in}
		if got := c.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
