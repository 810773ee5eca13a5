package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LinkStyle != "markdown" {
		t.Errorf("LinkStyle = %q", cfg.LinkStyle)
	}
	if cfg.DefaultUnitsPerProject != 3 {
		t.Errorf("DefaultUnitsPerProject = %d", cfg.DefaultUnitsPerProject)
	}
	if !cfg.BackupProjects {
		t.Error("BackupProjects = false")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Model = "claude-test"
	cfg.LinkStyle = "obsidian"
	cfg.DefaultUnitsPerProject = 5
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Model != "claude-test" || loaded.LinkStyle != "obsidian" || loaded.DefaultUnitsPerProject != 5 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "lumen")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("model: claude-test\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "claude-test" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.LinkStyle != "markdown" || cfg.DefaultUnitsPerProject != 3 {
		t.Errorf("defaults not kept for unset keys: %+v", cfg)
	}
}

func TestLoadRejectsBadLinkStyle(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "lumen")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("link_style: wiki\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "link_style") {
		t.Errorf("expected link_style error, got %v", err)
	}
}
