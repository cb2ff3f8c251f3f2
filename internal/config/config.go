package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SessionTTL is the fixed lifetime of an issued session.
const SessionTTL = 7 * 24 * time.Hour

const minSecretLength = 32

// Config aggregates runtime configuration for the storefront.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
}

// AuthConfig defines session and credential parameters.
type AuthConfig struct {
	SessionSecret       string
	BcryptCost          int
	CookieSecure        bool
	LoginPath           string
	HomePath            string
	LookupTimeoutMillis int
	ThrottleMaxFailures int
	ThrottleWindowSec   int
	LoginRatePerMinute  int
	BootstrapEmail      string
	BootstrapPassword   string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "dealership-storefront"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Auth: AuthConfig{
			SessionSecret:       os.Getenv("SESSION_SECRET"),
			BcryptCost:          getEnvAsInt("AUTH_BCRYPT_COST", 12),
			CookieSecure:        getEnvAsBool("AUTH_COOKIE_SECURE", false),
			LoginPath:           getEnv("AUTH_LOGIN_PATH", "/login"),
			HomePath:            getEnv("AUTH_HOME_PATH", "/"),
			LookupTimeoutMillis: getEnvAsInt("AUTH_LOOKUP_TIMEOUT_MS", 3000),
			ThrottleMaxFailures: getEnvAsInt("AUTH_THROTTLE_MAX_FAILURES", 5),
			ThrottleWindowSec:   getEnvAsInt("AUTH_THROTTLE_WINDOW_SECONDS", 900),
			LoginRatePerMinute:  getEnvAsInt("AUTH_LOGIN_RATE_PER_MINUTE", 30),
			BootstrapEmail:      os.Getenv("AUTH_BOOTSTRAP_EMAIL"),
			BootstrapPassword:   os.Getenv("AUTH_BOOTSTRAP_PASSWORD"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that defaults cannot repair.
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.Auth.SessionSecret)
	if secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if !c.App.IsDevelopment() && len(secret) < minSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes outside development", minSecretLength)
	}
	if !strings.HasPrefix(c.Auth.LoginPath, "/") || !strings.HasPrefix(c.Auth.HomePath, "/") {
		return errors.New("AUTH_LOGIN_PATH and AUTH_HOME_PATH must be absolute paths")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsDevelopment reports whether the service runs with local defaults.
func (a AppConfig) IsDevelopment() bool {
	switch strings.ToLower(a.Env) {
	case "development", "dev", "local", "test":
		return true
	}
	return false
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// LookupTimeout bounds credential store reads during login.
func (a AuthConfig) LookupTimeout() time.Duration {
	if a.LookupTimeoutMillis <= 0 {
		return 0
	}
	return time.Duration(a.LookupTimeoutMillis) * time.Millisecond
}

// ThrottleWindow is the period over which failed logins are counted.
func (a AuthConfig) ThrottleWindow() time.Duration {
	return time.Duration(a.ThrottleWindowSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
