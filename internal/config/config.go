package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string `env:"VT_ADDR" envDefault:":8080"`
	DBPath   string `env:"VT_DB_PATH" envDefault:"data/virtualtourist.db"`
	CacheDir string `env:"VT_CACHE_DIR" envDefault:"data/images"`

	CatalogURL   string `env:"VT_CATALOG_URL" envDefault:"https://api.flickr.com/services/rest/"`
	APIKey       string `env:"VT_API_KEY"`
	SearchMethod string `env:"VT_SEARCH_METHOD" envDefault:"flickr.photos.search"`
	ImageField   string `env:"VT_IMAGE_FIELD" envDefault:"url_m"`
	PerPage      int    `env:"VT_PER_PAGE" envDefault:"21"`
	MaxPages     int    `env:"VT_MAX_PAGES" envDefault:"190"`

	HTTPTimeout     time.Duration `env:"VT_HTTP_TIMEOUT" envDefault:"30s"`
	ImageScheme     string        `env:"VT_IMAGE_SCHEME" envDefault:"https"`
	PrefetchWorkers int           `env:"VT_PREFETCH_WORKERS" envDefault:"4"`

	LogLevel  slog.Level `env:"-"`
	LogFormat string     `env:"VT_LOG_FORMAT" envDefault:"text"`

	// APIToken, when set, is required as a bearer token on the HTTP API.
	APIToken string `env:"VT_API_TOKEN"`
}

// ErrMissingAPIKey is returned by RequireAPIKey when no catalog key is set.
var ErrMissingAPIKey = errors.New("VT_API_KEY must be set")

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)
	cfg.LogLevel = getLogLevel("VT_LOG_LEVEL", slog.LevelInfo)

	switch {
	case cfg.PerPage <= 0:
		return nil, fmt.Errorf("VT_PER_PAGE must be positive, got %d", cfg.PerPage)
	case cfg.MaxPages <= 0:
		return nil, fmt.Errorf("VT_MAX_PAGES must be positive, got %d", cfg.MaxPages)
	case cfg.PrefetchWorkers <= 0:
		return nil, fmt.Errorf("VT_PREFETCH_WORKERS must be positive, got %d", cfg.PrefetchWorkers)
	case cfg.HTTPTimeout <= 0:
		return nil, fmt.Errorf("VT_HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}

	return cfg, nil
}

// RequireAPIKey fails when the catalog cannot be queried. Commands that only
// work on stored data do not need a key.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getLogLevel(key string, fallback slog.Level) slog.Level {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "":
		return fallback
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
