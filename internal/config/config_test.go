package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingConfig(t *testing.T) {
	t.Setenv("ARENA_CONFIG", "nonexistent.yaml")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	t.Setenv("ARENA_CONFIG", configFile)

	if err := os.WriteFile(configFile, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal("error opening config:", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr, got %s", cfg.ListenAddr)
	}
	if cfg.Storage.Driver != "bolt" {
		t.Errorf("expected default bolt driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %s", cfg.Timezone)
	}
}

func TestLoad_CustomConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	t.Setenv("ARENA_CONFIG", configFile)

	doc := `
listen_addr: ":9090"
timezone: "Europe/Dublin"
storage:
  driver: mongo
  uri: mongodb://localhost:27017
  db_name: arena_test
redis_url: redis://localhost:6379/0
`
	if err := os.WriteFile(configFile, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal("error opening config:", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.Storage.Driver != "mongo" || cfg.Storage.DBName != "arena_test" {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.RedisURL == "" {
		t.Error("expected redis url to be set")
	}
}
