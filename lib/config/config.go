// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/luckee-foundation/luckee/lib/ref"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for a Luckee registry node.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Database configures the SQLite state file.
	Database DatabaseConfig `yaml:"database"`

	// Contract holds the instantiate parameters used by `luckee init`.
	Contract ContractConfig `yaml:"contract"`

	// Limits bounds the work a single call may request.
	Limits LimitsConfig `yaml:"limits"`

	// Host configures the socket served by `luckee serve`.
	Host HostConfig `yaml:"host"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
// Contract parameters are deliberately absent: a registry's identity
// does not change between environments.
type ConfigOverrides struct {
	Database *DatabaseConfig `yaml:"database,omitempty"`
	Limits   *LimitsConfig   `yaml:"limits,omitempty"`
	Host     *HostConfig     `yaml:"host,omitempty"`
	Log      *LogConfig      `yaml:"log,omitempty"`
}

// DatabaseConfig configures the state database.
type DatabaseConfig struct {
	// Path is the SQLite file. Supports ${VAR} expansion.
	// Default: ${HOME}/.local/share/luckee/registry.db
	Path string `yaml:"path"`

	// PoolSize is the number of pooled connections.
	// Default: 4
	PoolSize int `yaml:"pool_size"`
}

// ContractConfig holds the parameters recorded at instantiation.
type ContractConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`

	// Admin defaults to the instantiating caller.
	Admin string `yaml:"admin"`

	// Minter is the primary minter. Defaults to the admin.
	Minter string `yaml:"minter"`

	BaseURI string `yaml:"base_uri"`

	// SeedDefaultRecipes installs the launch recipe table.
	// Default: true
	SeedDefaultRecipes bool `yaml:"seed_default_recipes"`
}

// LimitsConfig bounds page sizes, batch mints, and synthesis inputs.
type LimitsConfig struct {
	DefaultPageSize    uint32 `yaml:"default_page_size"`
	MaxPageSize        uint32 `yaml:"max_page_size"`
	MaxBatchMint       int    `yaml:"max_batch_mint"`
	MaxSynthesisInputs int    `yaml:"max_synthesis_inputs"`
}

// HostConfig configures the host socket.
type HostConfig struct {
	// SocketPath is the Unix socket `luckee serve` listens on.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/luckee.sock
	SocketPath string `yaml:"socket_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`

	// Format is text, json, or auto. Auto picks text when stderr is a
	// terminal and json otherwise.
	// Default: auto (development), json (production)
	Format string `yaml:"format"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	return &Config{
		Environment: Development,
		Database: DatabaseConfig{
			Path:     "${HOME}/.local/share/luckee/registry.db",
			PoolSize: 4,
		},
		Contract: ContractConfig{
			SeedDefaultRecipes: true,
		},
		Limits: LimitsConfig{
			DefaultPageSize:    30,
			MaxPageSize:        30,
			MaxBatchMint:       100,
			MaxSynthesisInputs: 50,
		},
		Host: HostConfig{
			SocketPath: "${XDG_RUNTIME_DIR:-/tmp}/luckee.sock",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the LUCKEE_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if LUCKEE_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("LUCKEE_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("LUCKEE_CONFIG environment variable not set; " +
			"set it to the path of your luckee.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values. The only expansion performed is ${HOME} and similar
// variables in paths.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: machine-readable logs.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Level: "info", Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Database != nil {
		if overrides.Database.Path != "" {
			c.Database.Path = overrides.Database.Path
		}
		if overrides.Database.PoolSize != 0 {
			c.Database.PoolSize = overrides.Database.PoolSize
		}
	}

	if overrides.Limits != nil {
		if overrides.Limits.DefaultPageSize != 0 {
			c.Limits.DefaultPageSize = overrides.Limits.DefaultPageSize
		}
		if overrides.Limits.MaxPageSize != 0 {
			c.Limits.MaxPageSize = overrides.Limits.MaxPageSize
		}
		if overrides.Limits.MaxBatchMint != 0 {
			c.Limits.MaxBatchMint = overrides.Limits.MaxBatchMint
		}
		if overrides.Limits.MaxSynthesisInputs != 0 {
			c.Limits.MaxSynthesisInputs = overrides.Limits.MaxSynthesisInputs
		}
	}

	if overrides.Host != nil && overrides.Host.SocketPath != "" {
		c.Host.SocketPath = overrides.Host.SocketPath
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Database.Path = expandVars(c.Database.Path, vars)
	c.Host.SocketPath = expandVars(c.Host.SocketPath, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Database.Path == "" {
		errs = append(errs, fmt.Errorf("database.path is required"))
	}
	if c.Database.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("database.pool_size must be at least 1"))
	}

	for field, value := range map[string]string{"contract.admin": c.Contract.Admin, "contract.minter": c.Contract.Minter} {
		if value == "" {
			continue
		}
		if _, err := ref.ParseAddress(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	if c.Limits.MaxPageSize == 0 {
		errs = append(errs, fmt.Errorf("limits.max_page_size must be positive"))
	}
	if c.Limits.DefaultPageSize > c.Limits.MaxPageSize {
		errs = append(errs, fmt.Errorf("limits.default_page_size %d exceeds limits.max_page_size %d",
			c.Limits.DefaultPageSize, c.Limits.MaxPageSize))
	}
	if c.Limits.MaxBatchMint < 1 {
		errs = append(errs, fmt.Errorf("limits.max_batch_mint must be at least 1"))
	}
	if c.Limits.MaxSynthesisInputs < 1 {
		errs = append(errs, fmt.Errorf("limits.max_synthesis_inputs must be at least 1"))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	logFormats := []string{"text", "json", "auto"}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// EnsurePaths creates the directories holding the database and socket.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Database.Path, c.Host.SocketPath} {
		if path == "" {
			continue
		}
		directory := filepath.Dir(path)
		if err := os.MkdirAll(directory, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", directory, err)
		}
	}
	return nil
}
