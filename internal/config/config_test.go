package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Namespace != "todos-backbone" {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Logging.File != ".todos.log" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.TUI.QueueBuffer != 64 || !cfg.TUI.ShowHelp {
		t.Fatalf("unexpected tui defaults: %+v", cfg.TUI)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "todos.yaml")
	body := "storage:\n  backend: file\n  file_path: /tmp/list.json\nlogging:\n  level: debug\ntui:\n  queue_buffer: 8\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TODOS_STORAGE_NAMESPACE", "work")
	t.Setenv("TODOS_LOGGING_FORMAT", "json")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.FilePath != "/tmp/list.json" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Storage.Namespace != "work" || cfg.Logging.Format != "json" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Logging.Level != "debug" || cfg.TUI.QueueBuffer != 8 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	opts := cfg.StorageOptions()
	if opts.Backend != "file" || opts.FilePath != "/tmp/list.json" {
		t.Fatalf("unexpected storage options: %+v", opts)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TODOS_STORAGE_BACKEND", "redis")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("storage", "", "")
	flags.String("namespace", "", "")
	if err := flags.Parse([]string{"--storage", "memory"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("expected flag to win, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Namespace != "todos-backbone" {
		t.Fatalf("unset flag should not override, got %q", cfg.Storage.Namespace)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("expected defaults to validate, got %v", errs)
	}

	cfg.Storage.Backend = "tape"
	cfg.Logging.Level = "loud"
	cfg.TUI.QueueBuffer = 0
	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %v", errs)
	}

	cfg = Default()
	cfg.Storage.Backend = "redis"
	errs = cfg.Validate()
	if len(errs) != 1 || errs[0].Field != "storage.redis_url" {
		t.Fatalf("expected redis_url to be required, got %v", errs)
	}
}

func TestLoadReturnsValidationErrors(t *testing.T) {
	isolate(t)
	t.Setenv("TODOS_STORAGE_BACKEND", "mysql")
	_, err := Load("", nil)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 || verrs[0].Field != "storage.mysql_dsn" {
		t.Fatalf("expected mysql_dsn validation error, got %v", err)
	}
}
