// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const envPrefix = "DEPLOYLINKS_"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8080"`

	// GitHub App credentials. The private key may be given inline (PEM) or as
	// a path to a PEM file; the inline value wins when both are set.
	AppID          int64  `env:"APP_ID,required"`
	PrivateKey     string `env:"APP_PRIVATE_KEY"`
	PrivateKeyPath string `env:"APP_PRIVATE_KEY_PATH"`
	WebhookSecret  string `env:"WEBHOOK_SECRET"`
	GitHubBaseURL  string `env:"GITHUB_BASE_URL"` // GHES host or API root; "/api/v3/" is appended when missing. Empty means api.github.com.

	BotLogin         string `env:"BOT_LOGIN" envDefault:"add-deployment-links[bot]"`
	TranslationTitle string `env:"TRANSLATION_PR_TITLE" envDefault:"New Crowdin updates"`

	AppVeyorURL string        `env:"APPVEYOR_URL" envDefault:"https://ci.appveyor.com"`
	SnapshotURL string        `env:"SNAPSHOT_URL" envDefault:"https://make.mudlet.org"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// HasWebhookSecret returns true when webhook signatures should be verified.
func (c *Config) HasWebhookSecret() bool {
	return c.WebhookSecret != ""
}

// Load reads configuration from DEPLOYLINKS_* environment variables and
// returns a validated Config. Variables from the file named by
// DEPLOYLINKS_ENV_FILE (default ".env") are loaded first without overriding
// variables already set; a missing file is not an error.
//
// DEPLOYLINKS_APP_ID and one of DEPLOYLINKS_APP_PRIVATE_KEY or
// DEPLOYLINKS_APP_PRIVATE_KEY_PATH are required.
func Load() (*Config, error) {
	envFile := ".env"
	if v, ok := os.LookupEnv(envPrefix + "ENV_FILE"); ok {
		envFile = v
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %q: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.PrivateKey == "" && cfg.PrivateKeyPath != "" {
		key, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading %sAPP_PRIVATE_KEY_PATH: %w", envPrefix, err)
		}
		cfg.PrivateKey = string(key)
	}
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return nil, fmt.Errorf("%sAPP_PRIVATE_KEY or %sAPP_PRIVATE_KEY_PATH must be set", envPrefix, envPrefix)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("%sLOG_FORMAT has invalid value %q: expected text or json", envPrefix, cfg.LogFormat)
	}

	cfg.AppVeyorURL = strings.TrimRight(cfg.AppVeyorURL, "/")
	cfg.SnapshotURL = strings.TrimRight(cfg.SnapshotURL, "/")

	return &cfg, nil
}
