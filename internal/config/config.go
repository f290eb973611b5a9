// Package config loads daemon configuration from an optional TOML file
// with environment-variable overrides. Precedence: defaults, then file,
// then TASKDOCK_* environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the config file looked for in the working directory
// when TASKDOCK_CONFIG is not set.
const DefaultFile = "taskdock.toml"

// Config holds everything the daemon needs to start.
type Config struct {
	ListenAddr  string   `toml:"listen_addr"`
	DataDir     string   `toml:"data_dir"`
	TokenSecret string   `toml:"token_secret"`
	TokenTTL    duration `toml:"token_ttl"`
	DataKey     string   `toml:"data_key"` // hex-encoded 32-byte key; empty disables at-rest encryption
	TLS         bool     `toml:"tls"`
	ImportDir   string   `toml:"import_dir"` // one-shot import of a legacy data dir at boot
	Debug       bool     `toml:"debug"`
}

// duration lets TOML and env values use Go duration syntax ("24h").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Load builds the daemon configuration.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: ":7080",
		DataDir:    "./data",
		TokenTTL:   duration(24 * time.Hour),
	}

	path := os.Getenv("TASKDOCK_CONFIG")
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("token secret is not set (token_secret in %s or TASKDOCK_TOKEN_SECRET)", DefaultFile)
	}
	if cfg.DataKey != "" {
		if _, err := cfg.DataKeyBytes(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TASKDOCK_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TASKDOCK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TASKDOCK_TOKEN_SECRET"); v != "" {
		cfg.TokenSecret = v
	}
	if v := os.Getenv("TASKDOCK_TOKEN_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TASKDOCK_TOKEN_TTL is not a valid duration: %w", err)
		}
		cfg.TokenTTL = duration(parsed)
	}
	if v := os.Getenv("TASKDOCK_DATA_KEY"); v != "" {
		cfg.DataKey = v
	}
	if v := os.Getenv("TASKDOCK_TLS"); v != "" {
		cfg.TLS = v == "true"
	}
	if v := os.Getenv("TASKDOCK_IMPORT_DIR"); v != "" {
		cfg.ImportDir = v
	}
	if v := os.Getenv("TASKDOCK_DEBUG"); v != "" {
		cfg.Debug = v == "true"
	}
	return nil
}

// TokenTTLDuration returns the session token lifetime.
func (c *Config) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL)
}

// DataKeyBytes decodes the at-rest encryption key. Returns nil when
// encryption is disabled.
func (c *Config) DataKeyBytes() ([]byte, error) {
	if c.DataKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.DataKey)
	if err != nil {
		return nil, fmt.Errorf("data_key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("data_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
