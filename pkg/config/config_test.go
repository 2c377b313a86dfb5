package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFromEnvPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
	  "zulip": {"site": "https://chat.example.com", "email": "ping-bot@example.com", "api_key": "secret"},
	  "bot": {"keyword": "PingingBot", "streams": ["general"]},
	  "status": {"host": "0.0.0.0", "port": 18791},
	  "logging": {"format": "json", "level": "debug", "add_source": true}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("PINGBOT_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Zulip.Site != "https://chat.example.com" {
		t.Fatalf("zulip.site = %q, want %q", cfg.Zulip.Site, "https://chat.example.com")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging.format = %q, want %q", cfg.Logging.Format, "json")
	}
	if len(cfg.Bot.Streams) != 1 || cfg.Bot.Streams[0] != "general" {
		t.Fatalf("bot.streams = %v, want [general]", cfg.Bot.Streams)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"zulip": {"site": "https://chat.example.com"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("PINGBOT_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Bot.Keyword != "PingingBot" {
		t.Fatalf("bot.keyword = %q, want %q", cfg.Bot.Keyword, "PingingBot")
	}
	if cfg.Bot.ShortKeyword != "PingBot" {
		t.Fatalf("bot.short_keyword = %q, want %q", cfg.Bot.ShortKeyword, "PingBot")
	}
	if cfg.Bot.BotEmailSuffix == "" {
		t.Fatal("bot.bot_email_suffix default missing")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"zulip": {"site": "https://chat.example.com", "email": "file@example.com", "api_key": "file-key"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("PINGBOT_CONFIG", path)
	t.Setenv("ZULIP_EMAIL", "env@example.com")
	t.Setenv("ZULIP_API_KEY", "env-key")
	t.Setenv("PINGBOT_STREAMS", "general, random ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Zulip.Email != "env@example.com" {
		t.Fatalf("zulip.email = %q, want env override", cfg.Zulip.Email)
	}
	if cfg.Zulip.APIKey != "env-key" {
		t.Fatalf("zulip.api_key = %q, want env override", cfg.Zulip.APIKey)
	}
	if len(cfg.Bot.Streams) != 2 || cfg.Bot.Streams[1] != "random" {
		t.Fatalf("bot.streams = %v, want [general random]", cfg.Bot.Streams)
	}
}

func TestLoadConfigInvalidEnvPath(t *testing.T) {
	t.Setenv("PINGBOT_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing config path")
	}
}
