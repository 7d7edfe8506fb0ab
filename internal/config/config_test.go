package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mempool.Capacity != 100_000 {
		t.Fatalf("expected default capacity, got %d", cfg.Mempool.Capacity)
	}
	if cfg.Storage.Backend != "pebble" {
		t.Fatalf("expected default backend pebble, got %q", cfg.Storage.Backend)
	}
}

func TestLoadConfigOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.toml")
	contents := `
[mempool]
capacity = 500
capacity_per_user = 10

[storage]
backend = "memory"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mempool.Capacity != 500 {
		t.Fatalf("expected overridden capacity 500, got %d", cfg.Mempool.Capacity)
	}
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("expected overridden backend memory, got %q", cfg.Storage.Backend)
	}
	if cfg.Mempool.TTLCheckInterval != 30*time.Second {
		t.Fatalf("expected default ttl_check_interval to survive, got %v", cfg.Mempool.TTLCheckInterval)
	}
}

func TestLoadConfigRejectsInvalidBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.toml")
	os.WriteFile(path, []byte("[storage]\nbackend = \"bogus\"\n"), 0o644)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for unsupported backend")
	}
}

func TestLoadConfigRejectsOversizedPerUserCapacity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.toml")
	os.WriteFile(path, []byte("[mempool]\ncapacity = 10\ncapacity_per_user = 50\n"), 0o644)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for capacity_per_user exceeding capacity")
	}
}
