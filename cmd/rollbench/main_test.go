package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/rollbench/internal/config"
)

func newTestCmd(t *testing.T, args ...string) (*cobra.Command, *options) {
	t.Helper()
	opts := &options{}
	cmd := &cobra.Command{Use: "test"}
	bindFlags(cmd.PersistentFlags(), opts)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	return cmd, opts
}

func intPtr(v int) *int           { return &v }
func stringPtr(v string) *string  { return &v }
func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }

func TestFlagsOverrideConfigFile(t *testing.T) {
	cmd, opts := newTestCmd(t, "--length", "10", "--mode", "agg")
	applyFileConfig(cmd, opts, config.FileConfig{
		Bench: config.BenchConfig{
			Length:     intPtr(99),
			TimeTarget: intPtr(30),
			Mode:       stringPtr("rolling"),
			Limit:      floatPtr(80),
			Seed:       int64Ptr(7),
		},
		Store: config.StoreConfig{Backend: stringPtr("sqlite")},
	})
	if opts.length != 10 {
		t.Fatalf("explicit --length should win, got %d", opts.length)
	}
	if opts.mode != "agg" {
		t.Fatalf("explicit --mode should win, got %q", opts.mode)
	}
	if opts.timeTarget != 30 || opts.limit != 80 || opts.seed != 7 {
		t.Fatalf("config values not applied: %+v", *opts)
	}
	if opts.backend != "sqlite" {
		t.Fatalf("expected sqlite backend, got %q", opts.backend)
	}
	if opts.minLength != defaultMinLength {
		t.Fatalf("unset values keep defaults, got %d", opts.minLength)
	}
}

func TestResolveOptionsReadsConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[bench]\ntime-target = 5\n[store]\ndir = \"" + filepath.ToSlash(dir) + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cmd, opts := newTestCmd(t, "--config", path)
	if err := resolveOptions(cmd, opts); err != nil {
		t.Fatalf("resolveOptions failed: %v", err)
	}
	if opts.timeTarget != 5 || opts.storeDir != filepath.ToSlash(dir) {
		t.Fatalf("unexpected options %+v", *opts)
	}
}

func TestResolveOptionsDefaultsStoreDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cmd, opts := newTestCmd(t, "--config", filepath.Join(t.TempDir(), "missing.toml"))
	if err := resolveOptions(cmd, opts); err != nil {
		t.Fatalf("resolveOptions failed: %v", err)
	}
	if opts.storeDir != filepath.Join("/data", "rollbench") {
		t.Fatalf("unexpected store dir %q", opts.storeDir)
	}
}

func TestValidateOptionsNamesFlag(t *testing.T) {
	cases := map[string][]string{
		"--version":     {"--version", "0"},
		"--time-target": {"--time-target", "-1"},
		"--min-length":  {"--length", "5", "--min-length", "6"},
		"--axis":        {"--axis", "2"},
		"--limit":       {"--limit", "101"},
		"--mode":        {"--mode", "weekly"},
		"--backend":     {"--backend", "postgres"},
		"--log-level":   {"--log-level", "loud"},
		"--rows":        {"--rows", "0"},
	}
	for flag, args := range cases {
		_, opts := newTestCmd(t, args...)
		err := validateOptions(*opts)
		if err == nil {
			t.Fatalf("expected error for %v", args)
		}
		if !strings.Contains(err.Error(), flag) {
			t.Fatalf("expected %s in error, got %q", flag, err.Error())
		}
	}
}

func TestValidateOptionsDefaults(t *testing.T) {
	_, opts := newTestCmd(t)
	if err := validateOptions(*opts); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensureConfigFile failed: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("commented template should load: %v", err)
	}

	var uncommented []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		uncommented = append(uncommented, line)
	}
	if err := os.WriteFile(path, []byte(strings.Join(uncommented, "\n")), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("uncommented template should load: %v", err)
	}
	if cfg.Bench.TimeTarget == nil || *cfg.Bench.TimeTarget != defaultTimeTarget {
		t.Fatalf("unexpected time-target %v", cfg.Bench.TimeTarget)
	}
	if cfg.Bench.Limit == nil || *cfg.Bench.Limit != defaultLimit {
		t.Fatalf("unexpected limit %v", cfg.Bench.Limit)
	}
	if cfg.Store.Backend == nil || *cfg.Store.Backend != defaultBackend {
		t.Fatalf("unexpected backend %v", cfg.Store.Backend)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != defaultLogLevel {
		t.Fatalf("unexpected log level %v", cfg.Log.Level)
	}
}

func TestEnsureConfigFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensureConfigFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != "[log]\nlevel = \"debug\"\n" {
		t.Fatalf("existing config overwritten: %q", data)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "check", "history", "calibration", "config"} {
		sub, _, err := root.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, sub, err)
		}
	}
	if root.PersistentFlags().Lookup("time-target") == nil {
		t.Fatalf("expected persistent --time-target")
	}
}

func TestCheckCommandHonoursCancel(t *testing.T) {
	dir := t.TempDir()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{
		"check", "--group", "mean",
		"--config", filepath.Join(dir, "missing.toml"),
		"--store-dir", dir,
		"--rows", "30", "--cols", "2", "--length", "10", "--min-length", "3",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := root.ExecuteContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSignalContextCancelsOnInterrupt(t *testing.T) {
	ctx, stop := signalContext(context.Background())
	defer stop()
	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("interrupt did not cancel the context")
	}
}
