package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	PublicURL string `env:"PUBLIC_URL"` // Base URL the platform uses to reach us; derived per request when empty

	VonageApplicationID string        `env:"VONAGE_APPLICATION_ID"`
	VonagePrivateKey    string        `env:"VONAGE_PRIVATE_KEY"` // PEM contents or path to a PEM file
	VonageAPIURL        string        `env:"VONAGE_API_URL" envDefault:"https://api.nexmo.com"`
	VonageTimeout       time.Duration `env:"VONAGE_TIMEOUT" envDefault:"10s"`
	VonageJWTTTL        time.Duration `env:"VONAGE_JWT_TTL" envDefault:"15m"`

	RecipientNumber string `env:"RECIPIENT_NUMBER"`
	SenderID        string `env:"SENDER_ID" envDefault:"JURGO"`
	EventPageSize   int    `env:"EVENT_PAGE_SIZE" envDefault:"100"`

	StateCacheSize int           `env:"STATE_CACHE_SIZE" envDefault:"10000"`
	StateTTL       time.Duration `env:"STATE_TTL" envDefault:"24h"`
	RedisURL       string        `env:"REDIS_URL"` // Optional state mirror; disabled when empty
	RedisPassword  string        `env:"REDIS_PASSWORD"`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	key, err := resolvePrivateKey(cfg.VonagePrivateKey)
	if err != nil {
		return nil, err
	}
	cfg.VonagePrivateKey = key
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	return cfg, nil
}

func (c *Config) validate() error {
	// Required: application credentials and the kitchen's phone number
	if strings.TrimSpace(c.VonageApplicationID) == "" {
		return fmt.Errorf("VONAGE_APPLICATION_ID environment variable is required")
	}
	if strings.TrimSpace(c.VonagePrivateKey) == "" {
		return fmt.Errorf("VONAGE_PRIVATE_KEY environment variable is required")
	}
	if strings.TrimSpace(c.RecipientNumber) == "" {
		return fmt.Errorf("RECIPIENT_NUMBER environment variable is required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.EventPageSize <= 0 || c.EventPageSize > 100 {
		return fmt.Errorf("invalid EVENT_PAGE_SIZE: must be between 1 and 100")
	}
	if c.StateCacheSize <= 0 {
		return fmt.Errorf("invalid STATE_CACHE_SIZE: must be positive")
	}
	if c.StateTTL <= 0 {
		return fmt.Errorf("invalid STATE_TTL: must be positive")
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: must be 'console' or 'json'")
	}

	return nil
}

// resolvePrivateKey accepts either inline PEM or a path to a PEM file.
func resolvePrivateKey(raw string) (string, error) {
	if strings.Contains(raw, "-----BEGIN") {
		// Inline keys in .env files often carry literal \n sequences
		return strings.ReplaceAll(raw, `\n`, "\n"), nil
	}

	data, err := os.ReadFile(raw)
	if err != nil {
		return "", fmt.Errorf("read VONAGE_PRIVATE_KEY file: %w", err)
	}
	return string(data), nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
