package utils

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}

// ReadPassphrase prompts on stderr and reads a password from stdin without
// echo. stdin must be a terminal.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read password: stdin is not a terminal")
	}
	return readHidden(fd, prompt)
}

// ReadPassphraseFromTTY reads a password from the controlling terminal, for
// commands whose stdin carries other input such as a piped private key.
func ReadPassphraseFromTTY(prompt string) ([]byte, error) {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for password input: %w", ttyPath(), err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", ttyPath())
	}
	return readHidden(fd, prompt)
}

func readHidden(fd int, prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// IsTerminal reports whether stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsTTYAvailable reports whether a controlling terminal can be opened.
func IsTTYAvailable() bool {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return false
	}
	defer tty.Close()
	return term.IsTerminal(int(tty.Fd()))
}

// ShowOnTTY writes content straight to the terminal, bypassing redirected
// stdout, waits for Enter and then clears the screen. A failure to clear is
// not reported.
func ShowOnTTY(content, prompt string) error {
	tty, err := os.OpenFile(ttyPath(), os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", ttyPath(), err)
	}
	defer tty.Close()

	if _, err := tty.WriteString(content + prompt); err != nil {
		return fmt.Errorf("failed to write to terminal: %w", err)
	}

	buf := make([]byte, 1)
	for {
		if _, err := tty.Read(buf); err != nil {
			return fmt.Errorf("failed to read from terminal: %w", err)
		}
		if buf[0] == '\n' || buf[0] == '\r' {
			break
		}
	}

	// Clear screen and move the cursor home.
	tty.WriteString("\033[2J\033[H")
	return nil
}
