// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Views backends selectable through VIEWS_BACKEND.
const (
	ViewsFile     = "file"
	ViewsValkey   = "valkey"
	ViewsPostgres = "postgres"
	ViewsNone     = "none"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Content
	ContentDir    string
	PublicDir     string
	DefaultAuthor string
	LoadWorkers   int
	CachePosts    bool
	CacheTTL      time.Duration

	// Site metadata for feeds
	SiteURL         string
	SiteTitle       string
	SiteDescription string
	SiteLanguage    string
	FeedLimit       int

	// View counting
	ViewsBackend string
	ViewsFile    string

	// PostgreSQL mirror. Empty DatabaseURL disables it.
	DatabaseURL string

	// Valkey (Redis-compatible cache). Empty host disables it.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// HTTP policy
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration

	// Logging
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load reads an optional .env file and then the environment, applying
// development defaults. Returns an error for malformed numbers and durations
// or an unusable combination of settings.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	p := &parser{}
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "3000"),
		Env:  envOrDefault("APP_ENV", "development"),

		ContentDir:    envOrDefault("CONTENT_DIR", "posts"),
		PublicDir:     envOrDefault("PUBLIC_DIR", "public"),
		DefaultAuthor: envOrDefault("DEFAULT_AUTHOR", "zsden"),
		LoadWorkers:   p.intVar("LOAD_WORKERS", 8),
		CachePosts:    p.boolVar("CACHE_POSTS", false),
		CacheTTL:      p.durationVar("CACHE_TTL", time.Minute),

		SiteURL:         strings.TrimRight(envOrDefault("SITE_URL", "http://localhost:3000"), "/"),
		SiteTitle:       envOrDefault("SITE_TITLE", "zsden's Blog"),
		SiteDescription: envOrDefault("SITE_DESCRIPTION", "A personal blog about tech and life"),
		SiteLanguage:    envOrDefault("SITE_LANGUAGE", "zh-CN"),
		FeedLimit:       p.intVar("FEED_LIMIT", 20),

		ViewsBackend: strings.ToLower(envOrDefault("VIEWS_BACKEND", ViewsFile)),
		ViewsFile:    envOrDefault("VIEWS_FILE", "data/views/views.json"),

		DatabaseURL: databaseURL(),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "*")),
		RateLimit:   p.intVar("RATE_LIMIT", 120),
		RateWindow:  p.durationVar("RATE_WINDOW", time.Minute),

		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
		LogMaxSizeMB:  p.intVar("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: p.intVar("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: p.intVar("LOG_MAX_AGE_DAYS", 30),
	}

	if p.err != nil {
		return nil, p.err
	}

	switch cfg.ViewsBackend {
	case ViewsFile, ViewsNone:
	case ViewsValkey:
		if cfg.ValkeyHost == "" {
			return nil, fmt.Errorf("VIEWS_BACKEND=valkey requires VALKEY_HOST")
		}
	case ViewsPostgres:
		if cfg.DatabaseURL == "" && cfg.Env == "production" {
			return nil, fmt.Errorf("VIEWS_BACKEND=postgres requires DATABASE_URL in production")
		}
	default:
		return nil, fmt.Errorf("unknown VIEWS_BACKEND %q", cfg.ViewsBackend)
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise builds a DSN from the
// POSTGRES_* variables when POSTGRES_HOST is set.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOrDefault("POSTGRES_USER", "zsblog"),
		envOrDefault("POSTGRES_PASSWORD", "changeme"),
		host,
		envOrDefault("POSTGRES_PORT", "5432"),
		envOrDefault("POSTGRES_DB", "zsblog"),
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (p *parser) intVar(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) boolVar(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return b
}

func (p *parser) durationVar(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}
