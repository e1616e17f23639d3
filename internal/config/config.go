// Package config loads the MediaID process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends accepted in MEDIAID_STORAGE.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config is read once at startup and treated as read-only afterwards.
type Config struct {
	HTTPAddr string `env:"MEDIAID_HTTP_ADDR" envDefault:":5000"`
	Storage  string `env:"MEDIAID_STORAGE" envDefault:"sqlite"`
	DBPath   string `env:"MEDIAID_DB_PATH" envDefault:"mediaid.db"`
	VaultKey string `env:"MEDIAID_VAULT_KEY"`
	Debug    bool   `env:"MEDIAID_DEBUG"`

	Mistral Mistral `envPrefix:"MISTRAL_"`
}

// Mistral holds the agent credentials.
type Mistral struct {
	APIKey   string `env:"API_KEY"`
	AgentID  string `env:"AGENT_ID"`
	Endpoint string `env:"ENDPOINT" envDefault:"https://api.mistral.ai/v1/agents/completions"`
}

// Load reads the given .env files (".env" when none are named) into the process
// environment, then parses Config. Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQLite:
		if c.DBPath == "" {
			return errors.New("MEDIAID_DB_PATH is required for sqlite storage")
		}
	case StorageMemory:
		if c.VaultKey != "" {
			return errors.New("MEDIAID_VAULT_KEY applies to sqlite storage only")
		}
	default:
		return fmt.Errorf("unknown MEDIAID_STORAGE %q", c.Storage)
	}
	return nil
}

// HasAgentCredentials reports whether both Mistral secrets are set.
func (c Config) HasAgentCredentials() bool {
	return c.Mistral.APIKey != "" && c.Mistral.AgentID != ""
}
