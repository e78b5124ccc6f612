// Copyright 2026 The Keygate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the KEYGATE_* environment into typed settings for
// the two listeners, the identity core, the stores, and the auth-token
// middleware.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends selectable via KEYGATE_STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Identity      IdentityConfig
	AuthToken     AuthTokenConfig
	Store         string
	Database      DatabaseConfig
	Observability ObservabilityConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
}

// ServerConfig holds the listener configuration. The admin endpoint
// carries the full CRUD surface; the service endpoint carries only
// authentication and tenant discovery.
type ServerConfig struct {
	AdminBind    string
	ServiceBind  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// IdentityConfig holds the identity core tunables
type IdentityConfig struct {
	AdminRoleName        string
	ServiceAdminRoleName string
	TokenTTL             time.Duration
	PageLimitDefault     int
	PageLimitMax         int
}

// AuthTokenConfig holds the auth-token middleware configuration: where
// tokens are validated, and where validated requests are proxied when a
// downstream service is configured.
type AuthTokenConfig struct {
	AuthHost          string
	AuthPort          string
	AuthProtocol      string
	AuthURI           string
	AdminToken        string
	ServiceHost       string
	ServicePort       string
	ServiceProtocol   string
	ServicePass       string
	DelayAuthDecision bool
	CertFile          string
	KeyFile           string
}

// AuthURL returns the validation endpoint base, preferring the explicit
// KEYGATE_AUTH_URI over the host/port/protocol triple.
func (c AuthTokenConfig) AuthURL() string {
	if c.AuthURI != "" {
		return c.AuthURI
	}
	return fmt.Sprintf("%s://%s:%s", c.AuthProtocol, c.AuthHost, c.AuthPort)
}

// ServiceURL returns the downstream proxy target, or "" when no
// downstream service is configured.
func (c AuthTokenConfig) ServiceURL() string {
	if c.ServiceHost == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s:%s", c.ServiceProtocol, c.ServiceHost, c.ServicePort)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	TracingEnabled bool
	ServiceName    string
	ServiceVersion string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	Argon2Memory      uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
	Argon2SaltLength  uint32
	Argon2KeyLength   uint32
}

// RateLimitConfig holds the per-IP limiter settings for the
// authentication endpoint
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			AdminBind:    getEnv("KEYGATE_ADMIN_BIND", "0.0.0.0:35357"),
			ServiceBind:  getEnv("KEYGATE_SERVICE_BIND", "0.0.0.0:5000"),
			ReadTimeout:  parseDuration("KEYGATE_READ_TIMEOUT", "15s"),
			WriteTimeout: parseDuration("KEYGATE_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  parseDuration("KEYGATE_IDLE_TIMEOUT", "60s"),
		},
		Identity: IdentityConfig{
			AdminRoleName:        getEnv("KEYGATE_ADMIN_ROLE", "Admin"),
			ServiceAdminRoleName: getEnv("KEYGATE_SERVICE_ADMIN_ROLE", "KeygateServiceAdmin"),
			TokenTTL:             time.Duration(parseInt("KEYGATE_TOKEN_TTL_SECONDS", 86400)) * time.Second,
			PageLimitDefault:     parseInt("KEYGATE_PAGE_LIMIT_DEFAULT", 10),
			PageLimitMax:         parseInt("KEYGATE_PAGE_LIMIT_MAX", 100),
		},
		AuthToken: AuthTokenConfig{
			AuthHost:          getEnv("KEYGATE_AUTH_HOST", "127.0.0.1"),
			AuthPort:          getEnv("KEYGATE_AUTH_PORT", "35357"),
			AuthProtocol:      getEnv("KEYGATE_AUTH_PROTOCOL", "https"),
			AuthURI:           getEnv("KEYGATE_AUTH_URI", ""),
			AdminToken:        getEnv("KEYGATE_ADMIN_TOKEN", ""),
			ServiceHost:       getEnv("KEYGATE_SERVICE_HOST", ""),
			ServicePort:       getEnv("KEYGATE_SERVICE_PORT", "8080"),
			ServiceProtocol:   getEnv("KEYGATE_SERVICE_PROTOCOL", "https"),
			ServicePass:       getEnv("KEYGATE_SERVICE_PASS", ""),
			DelayAuthDecision: parseBool("KEYGATE_DELAY_AUTH_DECISION", false),
			CertFile:          getEnv("KEYGATE_CERTFILE", ""),
			KeyFile:           getEnv("KEYGATE_KEYFILE", ""),
		},
		Store: getEnv("KEYGATE_STORE", StorePostgres),
		Database: DatabaseConfig{
			Host:            getEnv("KEYGATE_DB_HOST", "localhost"),
			Port:            getEnv("KEYGATE_DB_PORT", "5432"),
			User:            getEnv("KEYGATE_DB_USER", "keygate"),
			Password:        getEnv("KEYGATE_DB_PASSWORD", ""),
			Database:        getEnv("KEYGATE_DB_NAME", "keygate"),
			SSLMode:         getEnv("KEYGATE_DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("KEYGATE_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    parseInt("KEYGATE_DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: parseDuration("KEYGATE_DB_CONN_MAX_LIFETIME", "5m"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("KEYGATE_LOG_LEVEL", "info"),
			LogFormat:      getEnv("KEYGATE_LOG_FORMAT", "json"),
			TracingEnabled: parseBool("KEYGATE_TRACING_ENABLED", false),
			ServiceName:    getEnv("KEYGATE_OTEL_SERVICE_NAME", "keygate"),
			ServiceVersion: getEnv("KEYGATE_OTEL_SERVICE_VERSION", "0.1.0"),
		},
		Security: SecurityConfig{
			Argon2Memory:      uint32(parseInt("KEYGATE_ARGON2_MEMORY", 65536)),
			Argon2Iterations:  uint32(parseInt("KEYGATE_ARGON2_ITERATIONS", 3)),
			Argon2Parallelism: uint8(parseInt("KEYGATE_ARGON2_PARALLELISM", 4)),
			Argon2SaltLength:  uint32(parseInt("KEYGATE_ARGON2_SALT_LENGTH", 16)),
			Argon2KeyLength:   uint32(parseInt("KEYGATE_ARGON2_KEY_LENGTH", 32)),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: float64(parseInt("KEYGATE_RATE_LIMIT_RPS", 10)),
			Burst:             parseInt("KEYGATE_RATE_LIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("KEYGATE_DB_PASSWORD is required when KEYGATE_STORE=postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("KEYGATE_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.Identity.PageLimitDefault > c.Identity.PageLimitMax {
		return fmt.Errorf("KEYGATE_PAGE_LIMIT_DEFAULT (%d) exceeds KEYGATE_PAGE_LIMIT_MAX (%d)",
			c.Identity.PageLimitDefault, c.Identity.PageLimitMax)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		// Fallback to default
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}
