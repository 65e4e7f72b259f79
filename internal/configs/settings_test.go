package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewSettingsExplicit(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, "/should/not/be/used")

	s, err := NewSettings(dir)
	if err != nil {
		t.Fatalf("NewSettings failed: %v", err)
	}
	if s.DataDir != dir {
		t.Errorf("Expected data dir %q, got %q", dir, s.DataDir)
	}
	if s.ConfigPath != filepath.Join(dir, "config.toml") {
		t.Errorf("Unexpected config path %q", s.ConfigPath)
	}
	if s.SessionDir != filepath.Join(dir, "session") {
		t.Errorf("Unexpected session dir %q", s.SessionDir)
	}
	if s.AuditPath != filepath.Join(dir, "audit.jsonl") {
		t.Errorf("Unexpected audit path %q", s.AuditPath)
	}
}

func TestNewSettingsFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)

	s, err := NewSettings("")
	if err != nil {
		t.Fatalf("NewSettings failed: %v", err)
	}
	if s.DataDir != dir {
		t.Errorf("Expected data dir from env %q, got %q", dir, s.DataDir)
	}
}

func TestNewSettingsDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvDataDir, "")

	s, err := NewSettings("")
	if err != nil {
		t.Fatalf("NewSettings failed: %v", err)
	}
	want := filepath.Join(home, ".solana", "jupwallet")
	if s.DataDir != want {
		t.Errorf("Expected default data dir %q, got %q", want, s.DataDir)
	}
}

func TestEnsureDirectories(t *testing.T) {
	s, err := NewSettings(filepath.Join(t.TempDir(), "jw"))
	if err != nil {
		t.Fatalf("NewSettings failed: %v", err)
	}
	if err := s.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{s.DataDir, s.DBDir, s.SessionDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("Expected %s to exist: %v", dir, err)
		}
		if info.Mode().Perm() != 0700 {
			t.Errorf("Expected %s to be 0700, got %o", dir, info.Mode().Perm())
		}
	}
}
