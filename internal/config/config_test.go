package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mount.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "device: /dev/nbd0\nbackend: ramdisk\nsizeBytes: 33554432\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BlockSize != defaultBlockSize {
		t.Fatalf("BlockSize = %d, want %d", cfg.BlockSize, defaultBlockSize)
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Level != "info" {
		t.Fatalf("Logging defaults = %+v", cfg.Logging)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9109" {
		t.Fatalf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}
}

func TestLoadRequiresDeviceAndBackend(t *testing.T) {
	path := writeTempConfig(t, "backend: ramdisk\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing device")
	}

	path = writeTempConfig(t, "device: /dev/nbd0\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing backend")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
