package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Ledger backends selectable with LEDGER_BACKEND.
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days
	AdminUsername string        `env:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`

	LedgerBackend         string        `env:"LEDGER_BACKEND" default:"sheets"`
	GoogleClientsSheetID  string        `env:"GOOGLE_CLIENTS_SHEET_ID"`
	GoogleSessionsSheetID string        `env:"GOOGLE_SESSIONS_SHEET_ID"`
	GoogleCredentialsJSON string        `env:"GOOGLE_CREDENTIALS_JSON"`
	DatabaseURL           string        `env:"DATABASE_URL"`
	SQLitePath            string        `env:"SQLITE_PATH" default:"coaching.db"`
	RedisURL              string        `env:"REDIS_URL"`
	ClientCacheTTL        time.Duration `env:"CLIENT_CACHE_TTL" default:"30s"`

	OpenRouterAPIKey string        `env:"OPENROUTER_API_KEY"`
	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY"`
	AIBaseURL        string        `env:"AI_BASE_URL" default:"https://openrouter.ai/api/v1"`
	AIModel          string        `env:"AI_MODEL" default:"anthropic/claude-3-5-sonnet"`
	AITimeout        time.Duration `env:"AI_TIMEOUT" default:"30s"`

	SMTPHost         string `env:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort         int    `env:"SMTP_PORT" default:"465"`
	GmailSenderEmail string `env:"GMAIL_SENDER_EMAIL"`
	GmailAppPassword string `env:"GMAIL_APP_PASSWORD"`
	GmailSenderName  string `env:"GMAIL_SENDER_NAME" default:"Coaching Team"`

	DeploymentURL      string  `env:"DEPLOYMENT_URL" default:"http://localhost:8080"`
	CORSOrigins        string  `env:"CORS_ORIGINS" default:"*"`
	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" default:"5"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" default:"20"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// AIKey returns the first configured text-generation key, or "".
func (c *Config) AIKey() string {
	if c.OpenRouterAPIKey != "" {
		return c.OpenRouterAPIKey
	}
	return c.AnthropicAPIKey
}

// MailEnabled reports whether sender credentials are configured.
func (c *Config) MailEnabled() bool {
	return c.GmailSenderEmail != "" && c.GmailAppPassword != ""
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for o := range strings.SplitSeq(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func validate(cfg *Config) error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}
	if cfg.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD is required")
	}

	switch cfg.LedgerBackend {
	case BackendSheets:
		required := []struct{ name, value string }{
			{"GOOGLE_CLIENTS_SHEET_ID", cfg.GoogleClientsSheetID},
			{"GOOGLE_SESSIONS_SHEET_ID", cfg.GoogleSessionsSheetID},
			{"GOOGLE_CREDENTIALS_JSON", cfg.GoogleCredentialsJSON},
		}
		for _, r := range required {
			if strings.TrimSpace(r.value) == "" {
				return fmt.Errorf("%s is required", r.name)
			}
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("LEDGER_BACKEND must be one of sheets, postgres, sqlite; got %q", cfg.LedgerBackend)
	}

	if cfg.ClientCacheTTL <= 0 {
		return errors.New("CLIENT_CACHE_TTL must be positive")
	}
	if cfg.RateLimitPerSecond <= 0 || cfg.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive")
	}

	return nil
}
