// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used by both binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Content store backends.
const (
	BackendGitHub = "github"
	BackendGit    = "git"
	BackendMemory = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	SiteURL  string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	// Content store
	StoreBackend   string        `env:"STORE_BACKEND" envDefault:"memory"`
	GitHubToken    string        `env:"GITHUB_TOKEN"`
	GitHubOwner    string        `env:"GITHUB_OWNER"`
	GitHubRepo     string        `env:"GITHUB_REPO"`
	GitHubBranch   string        `env:"GITHUB_BRANCH" envDefault:"main"`
	GitHubAPIURL   string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	GitHubTimeout  time.Duration `env:"GITHUB_TIMEOUT" envDefault:"30s"`
	GitHubRetries  uint64        `env:"GITHUB_READ_RETRIES" envDefault:"2"`
	GitDir         string        `env:"GIT_DIR_PATH" envDefault:"./content"`
	CommitterName  string        `env:"COMMITTER_NAME" envDefault:"Content Admin"`
	CommitterEmail string        `env:"COMMITTER_EMAIL" envDefault:"admin@localhost"`

	// Content layout inside the store
	BlogPath        string `env:"BLOG_PATH" envDefault:"data/blog/posts.json"`
	MetadataDir     string `env:"METADATA_DIR" envDefault:"data/metadata"`
	TranslationsDir string `env:"TRANSLATIONS_DIR" envDefault:"lib/i18n/translations"`

	// RoutesFile overrides the built-in slug route table when set.
	RoutesFile string   `env:"ROUTES_FILE"`
	ExtraPages []string `env:"SITEMAP_EXTRA_PAGES" envSeparator:","`

	// Valkey (Redis-compatible cache). Caching and shared sessions are
	// disabled when ValkeyHost is empty.
	ValkeyHost     string        `env:"VALKEY_HOST"`
	ValkeyPort     string        `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string        `env:"VALKEY_PASSWORD"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Admin credentials
	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"` // bcrypt
	AdminTOTPSecret   string `env:"ADMIN_TOTP_SECRET"`   // base32

	// Login attempts allowed per client address and window
	LoginBurst  int           `env:"LOGIN_RATE_BURST" envDefault:"5"`
	LoginWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`

	// S3-compatible object storage for blog images
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"auto"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`
	S3Prefix    string `env:"S3_PREFIX" envDefault:"blog"`

	UploadMaxBytes int64 `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
	ImageMaxWidth  int   `env:"IMAGE_MAX_WIDTH" envDefault:"1600"`
}

// Load reads an optional .env file, then parses the environment. It
// returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendGitHub:
		if c.GitHubToken == "" || c.GitHubOwner == "" || c.GitHubRepo == "" {
			return fmt.Errorf("GITHUB_TOKEN, GITHUB_OWNER and GITHUB_REPO are required for the github backend")
		}
	case BackendGit, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want github, git or memory)", c.StoreBackend)
	}

	if c.Env != "production" {
		if c.AdminPasswordHash == "" {
			slog.Warn("ADMIN_PASSWORD_HASH is not set; admin login is disabled")
		}
		return nil
	}

	if c.StoreBackend == BackendMemory {
		return fmt.Errorf("STORE_BACKEND=memory loses every edit on restart and is not allowed in production")
	}
	if c.AdminPasswordHash == "" || c.AdminTOTPSecret == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH and ADMIN_TOTP_SECRET must be set in production")
	}
	if strings.HasPrefix(c.SiteURL, "http://localhost") {
		return fmt.Errorf("SITE_URL must be set in production")
	}
	return nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UseValkey reports whether a Valkey server is configured.
func (c *Config) UseValkey() bool {
	return c.ValkeyHost != ""
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
