package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	envZulipSite   = "ZULIP_SITE"
	envZulipEmail  = "ZULIP_EMAIL"
	envZulipAPIKey = "ZULIP_API_KEY"
	envStreams     = "PINGBOT_STREAMS"
)

const (
	defaultKeyword        = "PingingBot"
	defaultShortKeyword   = "PingBot"
	defaultBotEmailSuffix = "-bot@students.hackerschool.com"
)

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Zulip   ZulipConfig   `json:"zulip"`
	Bot     BotConfig     `json:"bot"`
	Status  StatusConfig  `json:"status"`
	Logging LoggingConfig `json:"logging,omitempty"`
}

// ZulipConfig holds the Zulip site URL and bot credentials.
type ZulipConfig struct {
	Site   string `json:"site"`
	Email  string `json:"email"`
	APIKey string `json:"api_key"`
}

// BotConfig controls trigger keywords, stream subscriptions, and which
// sender addresses count as automated. An empty Streams list means the bot
// subscribes to every stream it can see.
type BotConfig struct {
	Keyword        string   `json:"keyword"`
	ShortKeyword   string   `json:"short_keyword"`
	Streams        []string `json:"streams,omitempty"`
	BotEmailSuffix string   `json:"bot_email_suffix,omitempty"`
}

// StatusConfig configures the health/readiness HTTP endpoint bind settings.
type StatusConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// LoadConfig resolves config.json, unmarshals it, applies environment
// overrides, and fills in keyword defaults.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides injects credential and stream settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if site := strings.TrimSpace(os.Getenv(envZulipSite)); site != "" {
		cfg.Zulip.Site = site
	}
	if email := strings.TrimSpace(os.Getenv(envZulipEmail)); email != "" {
		cfg.Zulip.Email = email
	}
	if key := strings.TrimSpace(os.Getenv(envZulipAPIKey)); key != "" {
		cfg.Zulip.APIKey = key
	}
	if rawStreams := strings.TrimSpace(os.Getenv(envStreams)); rawStreams != "" {
		cfg.Bot.Streams = parseCSV(rawStreams)
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Bot.Keyword) == "" {
		cfg.Bot.Keyword = defaultKeyword
	}
	if strings.TrimSpace(cfg.Bot.ShortKeyword) == "" {
		cfg.Bot.ShortKeyword = defaultShortKeyword
	}
	if strings.TrimSpace(cfg.Bot.BotEmailSuffix) == "" {
		cfg.Bot.BotEmailSuffix = defaultBotEmailSuffix
	}
}

// parseCSV splits comma-separated values and returns a trimmed compact slice.
func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		clean = append(clean, trimmed)
	}

	return slices.Clip(clean)
}

// findConfigPath resolves the active config file location.
//
// Precedence is PINGBOT_CONFIG first, then cwd-local fallback paths.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("PINGBOT_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("PINGBOT_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("config.json not found (checked %s and %s)", candidates[0], candidates[1])
}
