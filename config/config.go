// config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":5200"`

	RemoteBaseURL string        `env:"REMOTE_BASE_URL,required,notEmpty"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" envDefault:"30s"`

	// Identity handed over by the sign-in flow; empty token means nobody is identified.
	SessionToken  string `env:"SESSION_TOKEN"`
	SessionUserID string `env:"SESSION_USER_ID"`

	LocalAPIToken  string   `env:"LOCAL_API_TOKEN"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// 0 disables the periodic reconciliation job.
	CollectionRefreshInterval time.Duration `env:"COLLECTION_REFRESH_INTERVAL" envDefault:"0s"`

	DetailsCacheSize int           `env:"DETAILS_CACHE_SIZE" envDefault:"500"`
	DetailsCacheTTL  time.Duration `env:"DETAILS_CACHE_TTL" envDefault:"10m"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CollectionRefreshInterval < 0 {
		return nil, fmt.Errorf("COLLECTION_REFRESH_INTERVAL must not be negative, got %s", cfg.CollectionRefreshInterval)
	}
	return &cfg, nil
}
