package heritage

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Config carries every knob the service needs. It is an explicit
// struct on purpose: handlers and stores receive the values they use,
// nothing reads the environment past process start.
type Config struct {
	HTTPAddr    string
	DatabaseDSN string
	AppBaseURL  string
	Debug       bool

	// TokenTTL is how long an issued bearer token stays valid without
	// renewal. SessionMaxAge caps the total lifetime of a session no
	// matter how many renewals extend it; zero disables the cap.
	TokenTTL      time.Duration
	SessionMaxAge time.Duration

	BcryptCost int

	// ResetSigningKey signs one-shot password-reset link tokens. It is
	// unrelated to session tokens, which are opaque database records.
	ResetSigningKey string
	ResetTokenTTL   time.Duration
}

// DefaultConfig returns a config suitable for local development.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      ":9009",
		DatabaseDSN:   "file:heritage.db?cache=shared&mode=rwc",
		AppBaseURL:    "http://localhost:9009",
		TokenTTL:      8 * time.Hour,
		SessionMaxAge: 7 * 24 * time.Hour,
		BcryptCost:    DefaultBcryptCost,
		ResetTokenTTL: 30 * time.Minute,
	}
}

// ConfigFromEnv layers environment variables over DefaultConfig.
// Callers load .env files (godotenv) before invoking this.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("HERITAGE_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("HERITAGE_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("HERITAGE_BASE_URL"); v != "" {
		cfg.AppBaseURL = v
	}
	if v := os.Getenv("HERITAGE_DEBUG"); v != "" {
		cfg.Debug, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("HERITAGE_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenTTL = d
		}
	}
	if v := os.Getenv("HERITAGE_SESSION_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionMaxAge = d
		}
	}
	if v := os.Getenv("HERITAGE_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BcryptCost = n
		}
	}
	if v := os.Getenv("HERITAGE_RESET_SIGNING_KEY"); v != "" {
		cfg.ResetSigningKey = v
	}
	if v := os.Getenv("HERITAGE_RESET_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ResetTokenTTL = d
		}
	}

	return cfg
}

// Validate will run validation rules
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.TokenTTL, validation.Required),
		validation.Field(&c.ResetSigningKey, validation.Required),
	)
}
