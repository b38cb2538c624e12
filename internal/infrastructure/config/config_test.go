package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"APP_NAME", "APP_VERSION", "APP_ENV", "APP_PORT",
		"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT", "HTTP_SHUTDOWN_TIMEOUT",
		"AUTH_ENABLED", "JWT_ISSUER_URI", "JWT_JWK_SET_URI", "AUTH_CLOCK_SKEW", "AUTH_BYPASS_PATHS",
		"LOG_LEVEL", "STORE_BACKEND", "STORE_NAMESPACE",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SSL_MODE",
		"REDIS_URL", "REDIS_POOL_SIZE",
		"GATEWAY_MODE", "GATEWAY_BASE_URL", "GATEWAY_USERNAME", "GATEWAY_PASSWORD",
		"GATEWAY_TOKEN_TTL", "GATEWAY_API_TIMEOUT", "SUBMISSION_TIMEOUT",
		"ISSUER_NAME", "ISSUER_ADDRESS", "ISSUER_TAX_ID", "ISSUER_EMAIL",
	}
	for _, key := range envVars {
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("GATEWAY_MODE", "loopback")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "ms_einvoice_core" {
		t.Errorf("expected default app name 'ms_einvoice_core', got %q", cfg.App.Name)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Store.Backend != "postgres" {
		t.Errorf("expected default store backend postgres, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Namespace != "invoices" {
		t.Errorf("expected default namespace 'invoices', got %q", cfg.Store.Namespace)
	}
	if cfg.Submission.Timeout != 30*time.Second {
		t.Errorf("expected default submission timeout 30s, got %v", cfg.Submission.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Log.Level)
	}
}

func TestLoad_WithCustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("APP_NAME", "test-app")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("STORE_NAMESPACE", "invoices:tenant-a")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("GATEWAY_MODE", "http")
	t.Setenv("GATEWAY_BASE_URL", "https://ap.example.com")
	t.Setenv("SUBMISSION_TIMEOUT", "5s")
	t.Setenv("ISSUER_NAME", "Testfirma GmbH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "test-app" {
		t.Errorf("expected app name 'test-app', got %q", cfg.App.Name)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("expected store backend redis, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Namespace != "invoices:tenant-a" {
		t.Errorf("expected custom namespace, got %q", cfg.Store.Namespace)
	}
	if cfg.Submission.Timeout != 5*time.Second {
		t.Errorf("expected submission timeout 5s, got %v", cfg.Submission.Timeout)
	}
	if cfg.Issuer.Name != "Testfirma GmbH" {
		t.Errorf("expected issuer name, got %q", cfg.Issuer.Name)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown store backend",
			env:  map[string]string{"STORE_BACKEND": "dynamo", "GATEWAY_MODE": "loopback"},
		},
		{
			name: "redis backend without url",
			env:  map[string]string{"STORE_BACKEND": "redis", "GATEWAY_MODE": "loopback"},
		},
		{
			name: "http gateway without base url",
			env:  map[string]string{"GATEWAY_MODE": "http"},
		},
		{
			name: "unknown gateway mode",
			env:  map[string]string{"GATEWAY_MODE": "carrier-pigeon"},
		},
		{
			name: "auth enabled without issuer",
			env:  map[string]string{"AUTH_ENABLED": "true", "GATEWAY_MODE": "loopback", "JWT_JWK_SET_URI": "https://idp/jwks"},
		},
		{
			name: "auth enabled without jwks",
			env:  map[string]string{"AUTH_ENABLED": "true", "GATEWAY_MODE": "loopback", "JWT_ISSUER_URI": "https://idp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("AUTH_ENABLED", "false")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestHTTPSettings_Address(t *testing.T) {
	h := HTTPSettings{Port: 9090}
	if got := h.Address(); got != ":9090" {
		t.Errorf("Address() = %q, want :9090", got)
	}
}
