package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("No home directory: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~", home},
		{"~/.solana/jupwallet", filepath.Join(home, ".solana", "jupwallet")},
		{"/var/lib/jupwallet", "/var/lib/jupwallet"},
		{"relative/dir", "relative/dir"},
		{"~other/dir", "~other/dir"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ExpandHome(tc.input)
			if err != nil {
				t.Fatalf("ExpandHome(%q) failed: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("ExpandHome(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestEnsurePrivateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := EnsurePrivateDir(dir); err != nil {
		t.Fatalf("EnsurePrivateDir failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Failed to stat dir: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("Expected 0700, got %o", info.Mode().Perm())
	}
}
