package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pgident.yaml")

	content := `version: 1
schema:
  path: ./schema.yaml
database:
  dsn: "postgres://localhost:5432/testdb"
analysis:
  hard_limit: 63
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Schema.Path != "./schema.yaml" {
		t.Errorf("unexpected schema path %s", cfg.Schema.Path)
	}
	if cfg.Database.Schema != "public" {
		t.Errorf("expected default schema public, got %s", cfg.Database.Schema)
	}
	if cfg.Analysis.SoftThreshold != 50 {
		t.Errorf("expected default soft threshold 50, got %d", cfg.Analysis.SoftThreshold)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected default format text, got %s", cfg.Output.Format)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadInvalidVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pgident.yaml")

	content := `version: 99
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "pgident.yaml")

	cfg := Default()
	cfg.Database.DSN = "postgres://localhost/app"
	cfg.Analysis.HardLimit = 30

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Database.DSN != cfg.Database.DSN {
		t.Errorf("dsn = %s", loaded.Database.DSN)
	}
	if loaded.Analysis.HardLimit != 30 {
		t.Errorf("hard limit = %d", loaded.Analysis.HardLimit)
	}
	if loaded.Analysis.SoftThreshold != 24 {
		t.Errorf("soft threshold = %d, want 80%% of 30", loaded.Analysis.SoftThreshold)
	}
}

func TestResolveValueEnv(t *testing.T) {
	t.Setenv("PGIDENT_TEST_DSN", "postgres://resolved/db")

	v, err := ResolveValue("${ENV:PGIDENT_TEST_DSN}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "postgres://resolved/db" {
		t.Errorf("resolved = %s", v)
	}
}

func TestResolveValueEnvMissing(t *testing.T) {
	if _, err := ResolveValue("${ENV:PGIDENT_DEFINITELY_NOT_SET}"); err == nil {
		t.Error("expected error for unset variable")
	}
}

func TestResolveValuePlain(t *testing.T) {
	v, err := ResolveValue("postgres://plain/db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "postgres://plain/db" {
		t.Errorf("plain value changed: %s", v)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	got := ExpandHome("~/x/y.yaml")
	want := filepath.Join(home, "x", "y.yaml")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	if ExpandHome("/abs/path") != "/abs/path" {
		t.Error("absolute path should pass through")
	}
}
