package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingSessionSecret is returned when SESSION_SECRET is not configured.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set")

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	LogLevel      string
	RunMigrations bool

	// Session cookie
	SessionSecret     string
	SessionCookieName string
	SessionMaxAge     time.Duration

	LoginRateLimit string
	RedisURL       string

	// Expense events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	PosthogAPIKey      string
	CORSAllowedOrigins []string

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	// DateFilterLocation is the time zone calendar-day filters are interpreted in.
	DateFilterLocation *time.Location
}

// GoogleOAuthEnabled reports whether all Google OAuth settings are present.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	return loadFrom(viper.New())
}

func loadFrom(v *viper.Viper) (*Config, error) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "5001")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_COOKIE_NAME", "RJ_session")
	v.SetDefault("SESSION_MAX_AGE", "720h")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "explit")
	v.SetDefault("AMQP_QUEUE", "explit.expenses")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")
	v.SetDefault("DATE_FILTER_LOCATION", "Europe/Rome")

	// Environment variables override the defaults above (and whatever .env provided).
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        v.GetString("PGSQL_URL"),
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      v.GetBool("ENABLE_DB_CHECK"),
		LogLevel:           strings.ToLower(v.GetString("LOG_LEVEL")),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		SessionCookieName:  v.GetString("SESSION_COOKIE_NAME"),
		LoginRateLimit:     v.GetString("LOGIN_RATE_LIMIT"),
		RedisURL:           v.GetString("REDIS_URL"),
		AMQPURL:            v.GetString("AMQP_URL"),
		AMQPExchange:       v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:          v.GetString("AMQP_QUEUE"),
		PosthogAPIKey:      v.GetString("POSTHOG_API_KEY"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "5001"
	}
	if cfg.SessionSecret == "" {
		return nil, ErrMissingSessionSecret
	}
	if cfg.SessionCookieName == "" {
		cfg.SessionCookieName = "RJ_session"
	}

	maxAgeStr := v.GetString("SESSION_MAX_AGE")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil || maxAge <= 0 {
		return nil, fmt.Errorf("invalid value for SESSION_MAX_AGE (%q)", maxAgeStr)
	}
	cfg.SessionMaxAge = maxAge

	locName := v.GetString("DATE_FILTER_LOCATION")
	loc, err := time.LoadLocation(locName)
	if err != nil {
		return nil, fmt.Errorf("invalid value for DATE_FILTER_LOCATION (%q): %w", locName, err)
	}
	cfg.DateFilterLocation = loc

	if !cfg.GoogleOAuthEnabled() {
		log.Println("Warning: Google OAuth settings incomplete. Google sign-in is disabled.")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
