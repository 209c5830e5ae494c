// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package config loads server configuration from an optional YAML file,
// the DATABASE_URL environment variable, and command-line flags. Flags
// win over the file; the file wins over built-in defaults.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full server configuration.
type Config struct {
	Web           Web           `koanf:"web"`
	Observability Observability `koanf:"observability"`
	Database      Database      `koanf:"database"`
	Log           Log           `koanf:"log"`
	Sessions      Sessions      `koanf:"sessions"`
}

// Web configures the JSON API server.
type Web struct {
	Addr           string   `koanf:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
	SecureCookies  bool     `koanf:"secure_cookies"`
}

// Observability configures the metrics/health server. An empty Addr
// disables it.
type Observability struct {
	Addr string `koanf:"addr"`
}

// Database configures the PostgreSQL connection.
type Database struct {
	URL string `koanf:"url"`
}

// Log configures the structured logger.
type Log struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Sessions configures session housekeeping.
type Sessions struct {
	PruneInterval time.Duration `koanf:"prune_interval"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Web: Web{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Observability: Observability{
			Addr: "127.0.0.1:9100",
		},
		Log: Log{
			Format: "json",
			Level:  "info",
		},
		Sessions: Sessions{
			PruneInterval: time.Hour,
		},
	}
}

// flagKeys maps command-line flag names onto config keys. Flags not
// listed here are not configuration and are ignored.
var flagKeys = map[string]string{
	"addr":            "web.addr",
	"allowed-origins": "web.allowed_origins",
	"secure-cookies":  "web.secure_cookies",
	"metrics-addr":    "observability.addr",
	"database-url":    "database.url",
	"log-format":      "log.format",
	"log-level":       "log.level",
	"prune-interval":  "sessions.prune_interval",
}

// Load assembles the configuration. path may be empty (no file); flags
// may be nil. When no database URL is configured, DATABASE_URL from the
// environment is used.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot start
// with. The database URL is checked by the commands that need it, so a
// config file without one is still valid.
func (c *Config) Validate() error {
	if c.Web.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("web.addr is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.Sessions.PruneInterval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("sessions.prune_interval must be positive")
	}
	return nil
}
