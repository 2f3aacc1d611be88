package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.pgident/pgident.yaml"
)

// Config is the top-level configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Schema   SchemaConfig   `yaml:"schema,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Analysis AnalysisConfig `yaml:"analysis,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Logging  LogConfig      `yaml:"logging,omitempty"`
}

// SchemaConfig locates the declarative schema definition.
type SchemaConfig struct {
	Path string `yaml:"path,omitempty"`
}

// DatabaseConfig defines the PostgreSQL connection used for
// verification and migration execution.
type DatabaseConfig struct {
	DSN    string `yaml:"dsn,omitempty"`
	Schema string `yaml:"schema,omitempty"` // default public
}

// AnalysisConfig tunes the identifier checks.
type AnalysisConfig struct {
	HardLimit     int  `yaml:"hard_limit,omitempty"`     // default 63
	SoftThreshold int  `yaml:"soft_threshold,omitempty"` // default 80% of the hard limit
	MaxDepth      int  `yaml:"max_depth,omitempty"`
	Suggest       bool `yaml:"suggest,omitempty"`
}

// OutputConfig defines report rendering settings.
type OutputConfig struct {
	Format    string `yaml:"format,omitempty"` // text, json, markdown, html
	Directory string `yaml:"directory,omitempty"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level         string `yaml:"level,omitempty"`          // debug, info, warn, error
	Directory     string `yaml:"directory,omitempty"`      // default ~/.pgident/logs/
	RetentionDays int    `yaml:"retention_days,omitempty"` // default 30
}

// Load reads and parses the config file from the given path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Default returns a config with all defaults applied, for running
// without a config file.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Database.Schema == "" {
		c.Database.Schema = "public"
	}
	if c.Analysis.HardLimit == 0 {
		c.Analysis.HardLimit = 63
	}
	// The soft threshold follows the hard limit: derive it when unset, and
	// re-derive it when a lowered hard limit leaves a stale value above it.
	if c.Analysis.SoftThreshold == 0 || c.Analysis.SoftThreshold > c.Analysis.HardLimit {
		c.Analysis.SoftThreshold = c.Analysis.HardLimit * 8 / 10
	}
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = ExpandHome("~/.pgident/logs/")
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = 30
	}
}

var secretPattern = regexp.MustCompile(`\$\{ENV:([^}]+)\}`)

func (c *Config) resolveSecrets() error {
	var err error
	c.Database.DSN, err = ResolveValue(c.Database.DSN)
	if err != nil {
		return fmt.Errorf("database dsn: %w", err)
	}
	return nil
}

// ResolveValue resolves ${ENV:NAME} references in a string value.
func ResolveValue(val string) (string, error) {
	matches := secretPattern.FindStringSubmatch(val)
	if matches == nil {
		return val, nil
	}

	ref := matches[1]
	v := os.Getenv(ref)
	if v == "" {
		return "", fmt.Errorf("environment variable %s not set", ref)
	}
	return strings.Replace(val, matches[0], v, 1), nil
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
