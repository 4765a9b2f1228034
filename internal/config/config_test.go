package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
log:
  level: warn
bot:
  webapp_url: https://gifts.example.com/app
  sync_interval: 2h
limits:
  max_gifts_per_user: 25
  max_swipes_per_day: 40
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Bot.WebAppURL != "https://gifts.example.com/app" {
		t.Fatalf("unexpected webapp url: %s", cfg.Bot.WebAppURL)
	}
	if cfg.Bot.SyncInterval.String() != "2h0m0s" {
		t.Fatalf("unexpected sync interval: %s", cfg.Bot.SyncInterval)
	}
	if cfg.Limits.MaxGiftsPerUser != 25 {
		t.Fatalf("unexpected max gifts per user: %d", cfg.Limits.MaxGiftsPerUser)
	}
	if cfg.Limits.MaxSwipesPerDay != 40 {
		t.Fatalf("unexpected max swipes per day: %d", cfg.Limits.MaxSwipesPerDay)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http addr default should stay :8080, got %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.SwipesPer10Sec != 10 {
		t.Fatalf("swipes_per_10sec default should stay 10, got %d", cfg.Limits.SwipesPer10Sec)
	}
	if cfg.Bot.RetryDelay.String() != "1m0s" {
		t.Fatalf("retry delay default should stay 1m, got %s", cfg.Bot.RetryDelay)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Limits.MaxGiftsPerUser != 50 {
		t.Fatalf("unexpected default max gifts per user: %d", cfg.Limits.MaxGiftsPerUser)
	}
	if cfg.Limits.MaxSwipesPerDay != 100 {
		t.Fatalf("unexpected default max swipes per day: %d", cfg.Limits.MaxSwipesPerDay)
	}
	if cfg.Bot.SyncInterval.String() != "6h0m0s" {
		t.Fatalf("unexpected default sync interval: %s", cfg.Bot.SyncInterval)
	}
}

func TestLoadEnvOverridesBeatYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MAX_SWIPES_PER_DAY", "7")
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Limits.MaxSwipesPerDay != 7 {
		t.Fatalf("unexpected env-overridden max swipes per day: %d", cfg.Limits.MaxSwipesPerDay)
	}
	if cfg.Auth.BotToken != "123:abc" || cfg.Bot.Token != "123:abc" {
		t.Fatalf("BOT_TOKEN should fill both auth and bot token: %q / %q", cfg.Auth.BotToken, cfg.Bot.Token)
	}
}

func TestLoadRejectsMissingBotTokenInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error when auth.bot_token is empty in production")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"BOT_TOKEN",
		"AUTH_DEV_MODE",
		"WEBAPP_URL",
		"GIFT_SYNC_INTERVAL",
		"GIFT_SYNC_JITTER",
		"GIFT_SYNC_RETRY_DELAY",
		"MAX_GIFTS_PER_USER",
		"MAX_SWIPES_PER_DAY",
		"SWIPES_PER_10SEC",
	} {
		t.Setenv(key, "")
	}
}
