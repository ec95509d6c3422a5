package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultWebAppURL is used when WEBAPP_URL is not set. Replace it with the hosted game.
const DefaultWebAppURL = "https://your-game-hosting.example.com/"

type Config struct {
	Token string `envconfig:"TG_BOT_TOKEN" required:"true"`
	// default tag must stay equal to DefaultWebAppURL.
	WebAppURL string `envconfig:"WEBAPP_URL" default:"https://your-game-hosting.example.com/"`

	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	DBPath      string        `envconfig:"LAUNCH_DB" default:"./launches.db"`
	PollTimeout time.Duration `envconfig:"POLL_TIMEOUT" default:"10s"`
}

// Load reads an optional .env file, then the process environment.
// Values already present in the environment win over the file.
func Load() (*Config, error) {
	// Missing .env is fine; env vars alone are enough.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: .env: %w", err)
	}
	return FromEnv()
}

// FromEnv processes the environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("config: TG_BOT_TOKEN is empty")
	}
	if err := ValidateWebAppURL(c.WebAppURL); err != nil {
		return fmt.Errorf("config: WEBAPP_URL: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: LOG_LEVEL %q not one of debug|info|warn|error", c.LogLevel)
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("config: POLL_TIMEOUT must be positive, got %s", c.PollTimeout)
	}
	return nil
}

// ValidateWebAppURL accepts only absolute http(s) URLs with a host.
func ValidateWebAppURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%q: scheme must be http or https", raw)
	}
	return nil
}
