package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
)

func TestInitCommand(t *testing.T) {
	dir := setupTestEnvironment(t)

	output := mustRunCLI(t, dir, "init")

	if !strings.Contains(output, "jupwallet initialized") {
		t.Errorf("Expected success message, got: %s", output)
	}
	if !strings.Contains(output, "jupwallet unlock --persist") {
		t.Errorf("Expected unlock hint, got: %s", output)
	}
	if !strings.Contains(output, "- "+filepath.Join(dir, "config.toml")) {
		t.Errorf("Expected the config path in the file list, got: %s", output)
	}
	for _, name := range []string{"config.toml", filepath.Join("data", "jupwallet.db")} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "session", "key")); !os.IsNotExist(err) {
		t.Error("No session file should exist without --start-session")
	}
}

func TestInitCommandStartSession(t *testing.T) {
	dir := setupTestEnvironment(t)

	output := mustRunCLI(t, dir, "init", "--start-session", "--driver", "bolt")

	if !strings.Contains(output, "Session persisted") {
		t.Errorf("Expected session message, got: %s", output)
	}
	if _, err := os.Stat(filepath.Join(dir, "session", "key")); err != nil {
		t.Errorf("Expected session file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "jupwallet.bolt")); err != nil {
		t.Errorf("Expected bolt database: %v", err)
	}
}

func TestInitCommandTwice(t *testing.T) {
	dir := setupTestEnvironment(t)
	mustRunCLI(t, dir, "init")

	output, err := runCLI(t, dir, "init")
	if !errors.Is(err, kerrors.ErrAlreadyInitialized) {
		t.Fatalf("Expected ErrAlreadyInitialized, got %v", err)
	}
	if !IsReported(err) {
		t.Error("Expected the error to be marked as reported")
	}
	if !strings.Contains(output, "already been initialized") {
		t.Errorf("Expected already initialized message, got: %s", output)
	}
}

func TestInitCommandForce(t *testing.T) {
	dir := setupTestEnvironment(t)
	mustRunCLI(t, dir, "init", "--start-session")
	mustRunCLI(t, dir, "wallet", "create", "old")

	t.Setenv(EnvMasterPassword, "replacement")
	output := mustRunCLI(t, dir, "init", "--force", "--yes")
	if !strings.Contains(output, "reinitialized") {
		t.Errorf("Expected reinitialized message, got: %s", output)
	}

	list := mustRunCLI(t, dir, "wallet", "list", "--all")
	if !strings.Contains(list, "No wallets found") {
		t.Errorf("Expected wallets to be wiped, got: %s", list)
	}
}

func TestInitCommandForceDeclined(t *testing.T) {
	dir := setupTestEnvironment(t)
	mustRunCLI(t, dir, "init")

	withStdin(t, "n\n")
	output, err := runCLI(t, dir, "init", "--force")
	if !errors.Is(err, kerrors.ErrAborted) {
		t.Fatalf("Expected ErrAborted, got %v", err)
	}
	if !strings.Contains(output, "Aborted") {
		t.Errorf("Expected abort message, got: %s", output)
	}
}

func TestInitCommandEmptyPassword(t *testing.T) {
	dir := setupTestEnvironment(t)
	t.Setenv(EnvMasterPassword, "")

	_, err := runCLI(t, dir, "init")
	if !errors.Is(err, kerrors.ErrEmptyPassword) {
		t.Fatalf("Expected ErrEmptyPassword, got %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("A rejected init must not create the data directory")
	}
}

func TestUnlockCommand(t *testing.T) {
	dir := setupTestEnvironment(t)
	mustRunCLI(t, dir, "init")

	t.Setenv(EnvMasterPassword, "wrong")
	output, err := runCLI(t, dir, "unlock")
	if !errors.Is(err, kerrors.ErrInvalidPassword) {
		t.Fatalf("Expected ErrInvalidPassword, got %v", err)
	}
	if !strings.Contains(output, "Invalid master password") {
		t.Errorf("Expected invalid password message, got: %s", output)
	}

	t.Setenv(EnvMasterPassword, testPassword)
	output = mustRunCLI(t, dir, "unlock", "--persist")
	if !strings.Contains(output, "Session persisted") {
		t.Errorf("Expected session message, got: %s", output)
	}

	unsetPassword(t)
	mustRunCLI(t, dir, "wallet", "create", "agent")
}

func TestCommandsBeforeInit(t *testing.T) {
	dir := setupTestEnvironment(t)

	tests := [][]string{
		{"unlock"},
		{"wallet", "create"},
		{"wallet", "list"},
		{"session", "status"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			output, err := runCLI(t, dir, args...)
			if !errors.Is(err, kerrors.ErrNotInitialized) {
				t.Fatalf("Expected ErrNotInitialized, got %v", err)
			}
			if !strings.Contains(output, "jupwallet init") {
				t.Errorf("Expected init hint, got: %s", output)
			}
		})
	}
}
