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

// AppConfig encapsulates all runtime configuration knobs.
type AppConfig struct {
	App        AppSettings
	HTTP       HTTPSettings
	Auth       AuthSettings
	Log        LogSettings
	Store      StoreSettings
	Database   DatabaseSettings
	Redis      RedisSettings
	Gateway    GatewaySettings
	Submission SubmissionSettings
	Issuer     IssuerSettings
}

type AppSettings struct {
	Name        string
	Version     string
	Environment string
}

type HTTPSettings struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type AuthSettings struct {
	Enabled     bool
	IssuerURI   string
	JWKSetURI   string
	ClockSkew   time.Duration
	BypassPaths []string
}

type LogSettings struct {
	Level string
}

// StoreSettings selects the invoice store backend.
type StoreSettings struct {
	Backend   string // "postgres" or "redis"
	Namespace string // collection key under which all invoices live
}

type DatabaseSettings struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisSettings struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GatewaySettings configures the outbound transmission channel.
// Mode "http" submits through the configured access-point API; mode
// "loopback" short-circuits delivery in-process for local development.
type GatewaySettings struct {
	Mode       string
	BaseURL    string
	Username   string
	Password   string
	TokenTTL   time.Duration
	APITimeout time.Duration
}

// SubmissionSettings bounds the asynchronous submission step.
type SubmissionSettings struct {
	Timeout time.Duration
}

// IssuerSettings is the company profile stamped into generated documents.
// Empty fields degrade to fixed placeholders at encoding time.
type IssuerSettings struct {
	Name    string
	Address string
	TaxID   string
	Email   string
}

// Load resolves the application configuration from environment variables.
// It first attempts to load variables from a .env file if it exists.
// Environment variables set in the system take precedence over .env file values.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "ms_einvoice_core"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
			Environment: getEnv("APP_ENV", "local"),
		},
		HTTP: HTTPSettings{
			Port:            getEnvAsInt("APP_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
			RequestTimeout:  getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Auth: AuthSettings{
			Enabled:     getEnvAsBool("AUTH_ENABLED", true),
			IssuerURI:   strings.TrimSpace(os.Getenv("JWT_ISSUER_URI")),
			JWKSetURI:   strings.TrimSpace(os.Getenv("JWT_JWK_SET_URI")),
			ClockSkew:   getEnvAsDuration("AUTH_CLOCK_SKEW", 2*time.Minute),
			BypassPaths: getEnvAsCSV("AUTH_BYPASS_PATHS", []string{"/health", "/metrics"}),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Store: StoreSettings{
			Backend:   strings.ToLower(getEnv("STORE_BACKEND", "postgres")),
			Namespace: getEnv("STORE_NAMESPACE", "invoices"),
		},
		Database: DatabaseSettings{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Database:        getEnv("DB_NAME", "ms_einvoice_core"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisSettings{
			URL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Gateway: GatewaySettings{
			Mode:       strings.ToLower(getEnv("GATEWAY_MODE", "http")),
			BaseURL:    strings.TrimSpace(os.Getenv("GATEWAY_BASE_URL")),
			Username:   strings.TrimSpace(os.Getenv("GATEWAY_USERNAME")),
			Password:   strings.TrimSpace(os.Getenv("GATEWAY_PASSWORD")),
			TokenTTL:   getEnvAsDuration("GATEWAY_TOKEN_TTL", 1*time.Hour),
			APITimeout: getEnvAsDuration("GATEWAY_API_TIMEOUT", 30*time.Second),
		},
		Submission: SubmissionSettings{
			Timeout: getEnvAsDuration("SUBMISSION_TIMEOUT", 30*time.Second),
		},
		Issuer: IssuerSettings{
			Name:    strings.TrimSpace(os.Getenv("ISSUER_NAME")),
			Address: strings.TrimSpace(os.Getenv("ISSUER_ADDRESS")),
			TaxID:   strings.TrimSpace(os.Getenv("ISSUER_TAX_ID")),
			Email:   strings.TrimSpace(os.Getenv("ISSUER_EMAIL")),
		},
	}

	switch cfg.Store.Backend {
	case "postgres", "redis":
	default:
		return cfg, fmt.Errorf("invalid config: STORE_BACKEND must be 'postgres' or 'redis', got %q", cfg.Store.Backend)
	}
	if cfg.Store.Namespace == "" {
		return cfg, errors.New("invalid config: STORE_NAMESPACE must not be empty")
	}

	switch cfg.Gateway.Mode {
	case "http":
		if cfg.Gateway.BaseURL == "" {
			return cfg, errors.New("invalid config: GATEWAY_BASE_URL is required when GATEWAY_MODE=http")
		}
	case "loopback":
	default:
		return cfg, fmt.Errorf("invalid config: GATEWAY_MODE must be 'http' or 'loopback', got %q", cfg.Gateway.Mode)
	}

	if cfg.Store.Backend == "redis" && cfg.Redis.URL == "" {
		return cfg, errors.New("invalid config: REDIS_URL is required when STORE_BACKEND=redis")
	}

	if cfg.Auth.Enabled {
		if cfg.Auth.IssuerURI == "" {
			return cfg, errors.New("invalid config: JWT_ISSUER_URI is required when AUTH_ENABLED=true")
		}
		if cfg.Auth.JWKSetURI == "" {
			return cfg, errors.New("invalid config: JWT_JWK_SET_URI is required when AUTH_ENABLED=true")
		}
	}

	return cfg, nil
}

// Address returns the HTTP listen address in host:port form.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsCSV(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
