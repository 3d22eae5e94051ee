package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"shrikavin.dev/internal/content"
	"shrikavin.dev/internal/mailer"
	"shrikavin.dev/internal/models"
)

// MaxBackgroundFPS bounds BACKGROUND_FPS
const MaxBackgroundFPS = 120

// Config holds all application configuration
type Config struct {
	ServerAddr   string `env:"SERVER_ADDR" envDefault:":8080"`
	DataPath     string `env:"DATA_PATH" envDefault:"data"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"portfolio.db"`
	ResumePath   string `env:"RESUME_PATH"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	ContactTo    string `env:"CONTACT_TO"`
	ContactSalt  string `env:"CONTACT_SALT" envDefault:"portfolio"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	BackgroundFPS     int           `env:"BACKGROUND_FPS" envDefault:"30"`
	ContactRateLimit  int           `env:"CONTACT_RATE_LIMIT" envDefault:"5"`
	ContactRateWindow time.Duration `env:"CONTACT_RATE_WINDOW" envDefault:"1h"`
	SubmitGuardTTL    time.Duration `env:"SUBMIT_GUARD_TTL" envDefault:"30s"`
	MessageRetention  time.Duration `env:"MESSAGE_RETENTION" envDefault:"0s"`

	Portfolio *models.Portfolio `env:"-"`
}

// SMTP returns the mailer settings
func (c *Config) SMTP() mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
		To:       c.ContactTo,
	}
}

// ResumeFile returns the resume location on disk. An explicit
// RESUME_PATH wins over the path named in the portfolio content.
func (c *Config) ResumeFile() string {
	if c.ResumePath != "" {
		return c.ResumePath
	}
	if c.Portfolio == nil || c.Portfolio.Profile.ResumePath == "" {
		return ""
	}
	return filepath.Join(c.DataPath, filepath.Base(c.Portfolio.Profile.ResumePath))
}

// ParseEnv loads configuration from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads .env (when present), the environment and the portfolio
// content under DataPath
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.BackgroundFPS <= 0 || cfg.BackgroundFPS > MaxBackgroundFPS {
		return nil, fmt.Errorf("BACKGROUND_FPS must be between 1 and %d, got %d", MaxBackgroundFPS, cfg.BackgroundFPS)
	}

	portfolio, err := content.Load(filepath.Join(cfg.DataPath, "portfolio.json"))
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	cfg.Portfolio = portfolio
	return &cfg, nil
}
