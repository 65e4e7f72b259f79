package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/session"

	logger "github.com/PolarWolf314/jupwallet/internal/logging"
	"github.com/fatih/color"
)

const testPassword = "Sw0rdfish!"

// testMachine derives the session file key from a fixed identity so tests
// do not depend on the host.
type testMachine string

func (m testMachine) MachineKey() (*secrets.Key, error) {
	return session.DeriveMachineKey(string(m))
}

// setupTestEnvironment points the CLI at a fresh data directory, swaps in a
// cheap KDF and supplies the master password through the environment.
// Returns the data directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	ResetGlobalState()
	originalNoColor := color.NoColor
	color.NoColor = true

	kdf = secrets.NewKDF(secrets.Argon2Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16})
	machineKey = testMachine("test-host:test-user")
	t.Setenv(EnvMasterPassword, testPassword)
	t.Setenv("JUPWALLET_HOME", "")

	t.Cleanup(func() {
		kdf = nil
		machineKey = nil
		color.NoColor = originalNoColor
		ResetGlobalState()
	})

	return filepath.Join(t.TempDir(), "jupwallet")
}

// unsetPassword removes the master password from the environment for the
// rest of the test.
func unsetPassword(t *testing.T) {
	t.Helper()
	t.Setenv(EnvMasterPassword, "")
	os.Unsetenv(EnvMasterPassword)
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)
	for _, r := range []*os.File{stdoutReader, stderrReader} {
		go func(r *os.File) {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, r); err != nil {
				log.Fatalf("Failed to run copy command: %s", err)
			}
			outputChan <- buf.String()
		}(r)
	}

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	first := <-outputChan
	second := <-outputChan

	return first + second, err
}

// withStdin replaces stdin with content for the rest of the test.
func withStdin(t *testing.T, content string) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	if _, err := w.WriteString(content); err != nil {
		t.Fatalf("Failed to write stdin: %v", err)
	}
	w.Close()

	original := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = original
		r.Close()
	})
}

// runCLI executes the root command with args against dir and returns the
// combined output.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	ResetGlobalState()
	Logger = logger.Logger{}

	RootCmd.SetArgs(append(args, "--data-dir", dir))
	return captureOutput(RootCmd.Execute)
}

// mustRunCLI is runCLI that fails the test on error.
func mustRunCLI(t *testing.T, dir string, args ...string) string {
	t.Helper()

	output, err := runCLI(t, dir, args...)
	if err != nil {
		t.Fatalf("jupwallet %v failed: %v\nOutput: %s", args, err, output)
	}
	return output
}
