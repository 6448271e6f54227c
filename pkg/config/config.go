// Package config loads graphrecords' runtime configuration: which storage
// engine backs the graph, where it persists data, and the ambient logging/
// cache knobs the query core and CLI consult at startup.
//
// Configuration can be loaded, in increasing precedence, from:
//   - programmatic defaults (DefaultConfig)
//   - a YAML file (LoadConfig)
//   - environment variables (LoadFromEnv, applied on top of either of the above)
//
// adapted from the teacher's apoc.Config / apoc.LoadFromEnv layering.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orneryd/graphrecords/pkg/glog"
)

// Engine selects which store.Mutable implementation backs a graph.
type Engine string

const (
	// EngineMemory keeps the graph entirely in RAM (store.Memory).
	EngineMemory Engine = "memory"
	// EngineBadger persists the graph to disk via BadgerDB (store.Badger).
	EngineBadger Engine = "badger"
)

// Config is graphrecords' top-level configuration.
type Config struct {
	// Engine selects the storage backend: "memory" or "badger".
	Engine Engine `yaml:"engine"`

	// DataDir is where the badger engine persists its files. Unused for
	// the memory engine.
	DataDir string `yaml:"data_dir"`

	// SyncWrites forces fsync after every badger write.
	SyncWrites bool `yaml:"sync_writes"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level"`

	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig holds sizing knobs for a scalar-subexpression cache. It is
// loaded and validated here only: pkg/query's ristretto-backed scalarCache
// does not read it and is built with fixed NumCounters/MaxCost constants.
type CacheConfig struct {
	// NumCounters is ristretto's admission-sketch size.
	NumCounters int64 `yaml:"num_counters"`
	// MaxCost is the cache's maximum total cost (roughly: entry count,
	// since each cached scalar costs 1).
	MaxCost int64 `yaml:"max_cost"`
}

// Environment variable names, all prefixed GRAPHRECORDS_ (the ambient
// config surface, mirroring the teacher's NORNICDB_APOC_* convention).
const (
	EnvEngine     = "GRAPHRECORDS_ENGINE"
	EnvDataDir    = "GRAPHRECORDS_DATA_DIR"
	EnvSyncWrites = "GRAPHRECORDS_SYNC_WRITES"
	EnvLogLevel   = "GRAPHRECORDS_LOG_LEVEL"
)

// DefaultConfig returns the zero-config starting point: an in-memory store
// logging at info level.
func DefaultConfig() *Config {
	return &Config{
		Engine:     EngineMemory,
		DataDir:    "./data/graphrecords",
		SyncWrites: false,
		LogLevel:   "info",
		Cache: CacheConfig{
			NumCounters: 1e5,
			MaxCost:     1 << 20,
		},
	}
}

// LoadConfig reads a YAML configuration file, starting from DefaultConfig
// for any field the file leaves unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads path if it exists, or returns DefaultConfig if
// it does not — a missing config file is not an error.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// LoadFromEnv applies GRAPHRECORDS_* environment overrides on top of cfg (or
// DefaultConfig if cfg is nil). This is the recommended path for
// Docker/Kubernetes deployments.
func LoadFromEnv(cfg *Config) *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if v := os.Getenv(EnvEngine); v != "" {
		cfg.Engine = Engine(strings.ToLower(v))
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvSyncWrites); v != "" {
		cfg.SyncWrites = parseBool(v, cfg.SyncWrites)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

func parseBool(s string, defaultVal bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	return b
}

// Validate reports a descriptive error for any config value the rest of the
// module cannot act on.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineMemory, EngineBadger:
	default:
		return fmt.Errorf("config: unknown engine %q (want %q or %q)", c.Engine, EngineMemory, EngineBadger)
	}
	if c.Engine == EngineBadger && c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required for the %q engine", EngineBadger)
	}
	if c.Cache.MaxCost <= 0 {
		return fmt.Errorf("config: cache.max_cost must be positive, got %d", c.Cache.MaxCost)
	}
	return nil
}

// GLogLevel translates LogLevel into a glog.Level.
func (c *Config) GLogLevel() glog.Level {
	return glog.ParseLevel(c.LogLevel)
}

// String renders a redaction-free summary for startup logging.
func (c *Config) String() string {
	return fmt.Sprintf("Config{engine=%s data_dir=%s sync_writes=%t log_level=%s}",
		c.Engine, c.DataDir, c.SyncWrites, c.LogLevel)
}
