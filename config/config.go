// Package config loads the scheduler's configuration surface: persistence
// path and backend selection, leader lock path, and log level. It never
// terminates the process; callers handle the returned error, the same
// discipline the teacher's config.LoadConfig follows.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Backend names a PersistenceBackend variant.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendBolt   Backend = "bolt"
	BackendSQL    Backend = "sql"
)

// Config is the scheduler's configuration surface.
type Config struct {
	// PersistPath is the backend-specific location: a file path for
	// BackendFile/BackendBolt, a DSN for BackendSQL. Empty for
	// BackendMemory, or when PersistBackend itself is empty ("no durable
	// metadata").
	PersistPath    string  `json:"persist_path,omitempty"`
	PersistBackend Backend `json:"persist_backend,omitempty"`

	// LeaderLockPath, when set, puts the scheduler in coordinated mode;
	// empty means standalone (always leader).
	LeaderLockPath string `json:"leader_lock_path,omitempty"`

	// LogLevel is one of logrus's parseable levels: debug, info, warn,
	// error. Empty defaults to "info".
	LogLevel string `json:"log_level,omitempty"`
}

// Load reads JSON config from path and applies defaults. It never
// terminates the process; callers should handle the returned error.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config JSON: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PersistPath != "" && c.PersistBackend == "" {
		c.PersistBackend = BackendFile
	}
}

func (c *Config) validate() error {
	switch c.PersistBackend {
	case "", BackendMemory, BackendFile, BackendBolt, BackendSQL:
	default:
		return fmt.Errorf("unknown persist_backend %q", c.PersistBackend)
	}
	if c.PersistBackend != "" && c.PersistBackend != BackendMemory && c.PersistPath == "" {
		return fmt.Errorf("persist_path is required for backend %q", c.PersistBackend)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
