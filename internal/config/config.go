package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Auth modes accepted by AUTH_MODE.
const (
	AuthModeStatic = "static"
	AuthModeJWT    = "jwt"
)

// DefaultAllowedOrigin is used when ALLOWED_ORIGINS is unset or lists
// nothing but separators.
const DefaultAllowedOrigin = "http://localhost:3000"

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Auth     AuthConfig
	JWT      JWTConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	Env          string        `env:"APP_ENV" envDefault:"development"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
}

// CORSConfig mirrors the options handed to the CORS middleware.
type CORSConfig struct {
	AllowedOrigins   []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AllowMethods     []string      `env:"CORS_ALLOW_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `env:"CORS_ALLOW_HEADERS" envSeparator:"," envDefault:"Origin,Content-Type,Accept,Authorization,X-Correlation-ID"`
	ExposeHeaders    []string      `env:"CORS_EXPOSE_HEADERS" envSeparator:"," envDefault:"X-Correlation-ID"`
	AllowCredentials bool          `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           time.Duration `env:"CORS_MAX_AGE" envDefault:"12h"`
}

// AuthConfig controls how bearer tokens are obtained and checked.
type AuthConfig struct {
	Mode   string `env:"AUTH_MODE" envDefault:"static"`
	Header string `env:"AUTH_HEADER" envDefault:"Authorization"`

	// Token is a literal expected token, used when no parameter is configured.
	Token string `env:"AUTH_TOKEN"`

	TokenParameter         string `env:"AUTH_TOKEN_PARAMETER"`
	PreviousTokenParameter string `env:"AUTH_PREVIOUS_TOKEN_PARAMETER"`

	CacheTTL      time.Duration `env:"AUTH_TOKEN_CACHE_TTL" envDefault:"5m"`
	FetchRetries  int           `env:"AUTH_TOKEN_FETCH_RETRIES" envDefault:"3"`
	RetryBaseWait time.Duration `env:"AUTH_TOKEN_RETRY_BASE_WAIT" envDefault:"200ms"`
}

type JWTConfig struct {
	Secret      string `env:"JWT_SECRET" envDefault:"dev-secret-change-in-production"`
	Issuer      string `env:"JWT_ISSUER" envDefault:"corsgate"`
	ExpiryHours int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`
}

type DatabaseConfig struct {
	AuditEnabled bool   `env:"AUDIT_ENABLED" envDefault:"false"`
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         string `env:"DB_PORT" envDefault:"5432"`
	User         string `env:"DB_USER" envDefault:"corsgate"`
	Password     string `env:"DB_PASSWORD" envDefault:"corsgate_dev_password"`
	DBName       string `env:"DB_NAME" envDefault:"corsgate"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns     int    `env:"DB_MAX_CONNS" envDefault:"10"`

	// Retention is how long audit events are kept; zero disables pruning.
	Retention time.Duration `env:"AUDIT_RETENTION" envDefault:"720h"`
}

// RedisConfig enables the shared token cache when Addr is set.
type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR"`
	Password  string `env:"REDIS_PASS"`
	DB        int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"corsgate:token:"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.CORS.AllowedOrigins = trimAll(cfg.CORS.AllowedOrigins)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{DefaultAllowedOrigin}
	}
	cfg.CORS.AllowMethods = trimAll(cfg.CORS.AllowMethods)
	cfg.CORS.AllowHeaders = trimAll(cfg.CORS.AllowHeaders)
	cfg.CORS.ExposeHeaders = trimAll(cfg.CORS.ExposeHeaders)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("ALLOWED_ORIGINS must list at least one origin")
	}
	for _, o := range c.CORS.AllowedOrigins {
		if o == "*" && c.CORS.AllowCredentials {
			return errors.New("ALLOWED_ORIGINS=* cannot be combined with CORS_ALLOW_CREDENTIALS=true")
		}
	}
	if len(c.CORS.AllowMethods) == 0 {
		return errors.New("CORS_ALLOW_METHODS must not be empty")
	}

	switch c.Auth.Mode {
	case AuthModeStatic:
		if c.Auth.Token == "" && c.Auth.TokenParameter == "" {
			return errors.New("static auth needs AUTH_TOKEN or AUTH_TOKEN_PARAMETER")
		}
	case AuthModeJWT:
		if c.JWT.Secret == "" {
			return errors.New("jwt auth needs JWT_SECRET")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE: %q (must be static or jwt)", c.Auth.Mode)
	}
	if c.Auth.Header == "" {
		return errors.New("AUTH_HEADER must not be empty")
	}
	if c.Auth.FetchRetries < 0 {
		return errors.New("AUTH_TOKEN_FETCH_RETRIES must not be negative")
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Server.LogLevel)
	}
	return nil
}

// IsDevelopment reports whether development-only routes may be mounted.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// DSN returns the Postgres connection string.
func (d *DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.DBName + "?sslmode=" + d.SSLMode
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
