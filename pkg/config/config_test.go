package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
	if cfg.Engine != EngineMemory {
		t.Fatalf("default engine = %q, want %q", cfg.Engine, EngineMemory)
	}
}

func TestValidateRejectsUnknownEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine = "mongodb"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown engine")
	}
}

func TestValidateRequiresDataDirForBadger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine = EngineBadger
	cfg.DataDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a badger engine with no data_dir")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graphrecords.yaml")
	yaml := "engine: badger\ndata_dir: /var/lib/graphrecords\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine != EngineBadger {
		t.Fatalf("engine = %q, want %q", cfg.Engine, EngineBadger)
	}
	if cfg.DataDir != "/var/lib/graphrecords" {
		t.Fatalf("data_dir = %q", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q, want debug", cfg.LogLevel)
	}
	// Fields absent from the file keep their DefaultConfig value.
	if cfg.Cache.MaxCost != DefaultConfig().Cache.MaxCost {
		t.Fatalf("cache.max_cost should default when unset in the file")
	}
}

func TestLoadConfigOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine != EngineMemory {
		t.Fatalf("missing file should yield DefaultConfig, got engine %q", cfg.Engine)
	}
}

func TestLoadFromEnvOverridesConfig(t *testing.T) {
	t.Setenv(EnvEngine, "badger")
	t.Setenv(EnvDataDir, "/tmp/gr")
	t.Setenv(EnvSyncWrites, "true")
	t.Setenv(EnvLogLevel, "warn")

	cfg := LoadFromEnv(DefaultConfig())
	if cfg.Engine != EngineBadger {
		t.Fatalf("engine = %q, want %q", cfg.Engine, EngineBadger)
	}
	if cfg.DataDir != "/tmp/gr" {
		t.Fatalf("data_dir = %q", cfg.DataDir)
	}
	if !cfg.SyncWrites {
		t.Fatal("sync_writes should be true")
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("log_level = %q, want warn", cfg.LogLevel)
	}
}
