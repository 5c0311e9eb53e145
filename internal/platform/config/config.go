// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles client-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. An optional .env file
is read first so local development does not need exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to the transport, the session store and the console.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Session Drivers

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the Askly client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Remote backend
	APIURL            string        `env:"API_URL"              envDefault:"http://localhost:3000"`
	APITimeout        time.Duration `env:"API_TIMEOUT"          envDefault:"10s"`
	APIRateLimitRPS   float64       `env:"API_RATE_LIMIT_RPS"   envDefault:"10"`
	APIRateLimitBurst int           `env:"API_RATE_LIMIT_BURST" envDefault:"20"`

	// Persisted session record
	SessionDriver string `env:"SESSION_DRIVER" envDefault:"sqlite"`
	SessionPath   string `env:"SESSION_PATH"`
	RedisURL      string `env:"REDIS_URL"`
	DatabaseURL   string `env:"DATABASE_URL"`

	// SessionSecret seals record values at rest when set.
	SessionSecret string `env:"SESSION_SECRET"`

	// Local web console
	ConsolePort  string `env:"CONSOLE_PORT"  envDefault:"5173"`
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load() (*Config, error) {

	// A missing .env is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.SessionDriver == DriverSQLite && cfg.SessionPath == "" {
		cfg.SessionPath = defaultSessionPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks driver-specific requirements.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("config: API_URL cannot be empty")
	}
	if c.APITimeout <= 0 {
		return errors.New("config: API_TIMEOUT must be > 0")
	}

	switch c.SessionDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SessionPath == "" {
			return errors.New("config: SESSION_PATH is required for the sqlite driver")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL is required for the redis driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_DRIVER %q", c.SessionDriver)
	}

	return nil
}

// IsDevelopment reports whether the client is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AllowedOrigins lists the origins the console accepts outside development.
func (c *Config) AllowedOrigins() []string {
	origins := []string{
		"http://localhost:" + c.ConsolePort,
		"http://127.0.0.1:" + c.ConsolePort,
	}
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// defaultSessionPath places the record under the user's config directory.
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "data", "session.db")
	}
	return filepath.Join(dir, "askly", "session.db")
}
