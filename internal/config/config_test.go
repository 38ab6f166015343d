package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Bench.TimeTarget != nil || cfg.Store.Backend != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[bench]
version = 3
time-target = 40
limit = 90.5
mode = "agg"
seed = 7

[store]
backend = "sqlite"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Bench.Version == nil || *cfg.Bench.Version != 3 {
		t.Fatalf("unexpected version: %v", cfg.Bench.Version)
	}
	if cfg.Bench.TimeTarget == nil || *cfg.Bench.TimeTarget != 40 {
		t.Fatalf("unexpected time-target: %v", cfg.Bench.TimeTarget)
	}
	if cfg.Bench.Limit == nil || *cfg.Bench.Limit != 90.5 {
		t.Fatalf("unexpected limit: %v", cfg.Bench.Limit)
	}
	if cfg.Bench.Mode == nil || *cfg.Bench.Mode != "agg" {
		t.Fatalf("unexpected mode: %v", cfg.Bench.Mode)
	}
	if cfg.Bench.Seed == nil || *cfg.Bench.Seed != 7 {
		t.Fatalf("unexpected seed: %v", cfg.Bench.Seed)
	}
	if cfg.Bench.Length != nil {
		t.Fatalf("expected unset length")
	}
	if cfg.Store.Backend == nil || *cfg.Store.Backend != "sqlite" {
		t.Fatalf("unexpected backend: %v", cfg.Store.Backend)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[bench]\nwindow = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "rollbench", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDataDir(); got != filepath.Join("/data", "rollbench") {
		t.Fatalf("unexpected data dir %q", got)
	}
}
