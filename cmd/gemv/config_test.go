package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	const body = `
alpha: 0.5
beta: 2.0
seed: 7
log_level: debug
log_dir: /tmp/gemv-runs
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := loadConfigFrom(path)
	if cfg.Alpha == nil || *cfg.Alpha != 0.5 {
		t.Errorf("alpha = %v, want 0.5", cfg.Alpha)
	}
	if cfg.Beta == nil || *cfg.Beta != 2.0 {
		t.Errorf("beta = %v, want 2.0", cfg.Beta)
	}
	if cfg.Seed == nil || *cfg.Seed != 7 {
		t.Errorf("seed = %v, want 7", cfg.Seed)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
	if cfg.LogDir != "/tmp/gemv-runs" {
		t.Errorf("log_dir = %q", cfg.LogDir)
	}
}

func TestLoadConfigFromMissingFile(t *testing.T) {
	cfg := loadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.Alpha != nil || cfg.LogLevel != "" {
		t.Errorf("missing file should yield a zero config, got %+v", cfg)
	}
}

func TestLoadConfigFromBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("alpha: [not a float"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := loadConfigFrom(path)
	if cfg.Alpha != nil {
		t.Errorf("unparseable file should yield a zero config, got %+v", cfg)
	}
}
