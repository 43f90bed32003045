package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PixelsPerMM != 1.0 {
		t.Errorf("PixelsPerMM = %v, want 1.0", cfg.PixelsPerMM)
	}
	if cfg.Mode != "first" {
		t.Errorf("Mode = %q, want first", cfg.Mode)
	}
	if cfg.CacheTTLDuration() != 24*time.Hour {
		t.Errorf("CacheTTL = %v, want 24h", cfg.CacheTTLDuration())
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
pixels_per_mm = 4.0
mode = "largest"
cache_ttl = "1h"
poll_interval = "500ms"

[server]
addr = ":9090"
redis_addr = "localhost:6379"
mongo_uri = "mongodb://localhost:27017"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PixelsPerMM != 4.0 {
		t.Errorf("PixelsPerMM = %v, want 4.0", cfg.PixelsPerMM)
	}
	if cfg.Mode != "largest" {
		t.Errorf("Mode = %q, want largest", cfg.Mode)
	}
	if cfg.CacheTTLDuration() != time.Hour {
		t.Errorf("CacheTTL = %v, want 1h", cfg.CacheTTLDuration())
	}
	if cfg.PollIntervalDuration() != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", cfg.PollIntervalDuration())
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Server.RedisAddr != "localhost:6379" {
		t.Errorf("Server.RedisAddr = %q", cfg.Server.RedisAddr)
	}
	// MongoDB name keeps its default when not set in the file
	if cfg.Server.MongoDB != "texscale" {
		t.Errorf("Server.MongoDB = %q, want texscale", cfg.Server.MongoDB)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("pixels_per_mm = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil for invalid TOML, want error")
	}
}
