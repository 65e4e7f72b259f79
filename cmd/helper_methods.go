package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/utils"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	stopped := false
	cleanup := func() {
		if stopped {
			return
		}
		stopped = true

		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print to stdout so tests can capture it.
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// reportedError marks an error whose message was already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// reported wraps err so Execute's caller does not print it a second time.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// readMasterPassword returns the master password from the environment or
// prompts for it without echo. The terminal is used when stdin carries
// other input.
func readMasterPassword(prompt string) ([]byte, error) {
	if pw, ok := os.LookupEnv(EnvMasterPassword); ok {
		Logger.Debugf("Using master password from %s", EnvMasterPassword)
		return []byte(pw), nil
	}
	switch {
	case utils.IsTerminal():
		return utils.ReadPassphrase(prompt)
	case utils.IsTTYAvailable():
		return utils.ReadPassphraseFromTTY(prompt)
	default:
		return nil, fmt.Errorf("%w: set %s to run without one", kerrors.ErrTTYRequired, EnvMasterPassword)
	}
}

// readNewMasterPassword reads a new master password. Interactive entry is
// confirmed with a second prompt.
func readNewMasterPassword() ([]byte, error) {
	if pw, ok := os.LookupEnv(EnvMasterPassword); ok {
		if pw == "" {
			return nil, kerrors.ErrEmptyPassword
		}
		return []byte(pw), nil
	}

	password, err := readMasterPassword("New master password: ")
	if err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, kerrors.ErrEmptyPassword
	}

	confirm, err := readMasterPassword("Confirm master password: ")
	if err != nil {
		secrets.Zero(password)
		return nil, err
	}
	defer secrets.Zero(confirm)

	if !bytes.Equal(password, confirm) {
		secrets.Zero(password)
		return nil, kerrors.ErrPasswordMismatch
	}
	return password, nil
}

// authorized runs fn with the persisted session first and falls back to
// the master password when none is available.
func authorized(fn func(password []byte) error) error {
	err := fn(nil)
	if !errors.Is(err, kerrors.ErrSessionNotAuthenticated) {
		return err
	}

	Logger.Infof("No active session, asking for the master password")
	password, err := readMasterPassword("Master password: ")
	if err != nil {
		return err
	}
	defer secrets.Zero(password)
	return fn(password)
}

// confirmAction asks a yes/no question on stdin. Anything but y or yes is a no.
func confirmAction(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(question + " [y/N]: ")
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		Logger.Errorf("Failed to read response: %v", err)
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// formatError formats an error for display to the user.
func formatError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNotInitialized),
		errors.Is(err, kerrors.ErrSessionKeyNotInitialized):
		return ui.ErrorLine("jupwallet has not been initialized") + "\n" +
			ui.HintLine("Run %s first", ui.Code.Sprint("jupwallet init"))

	case errors.Is(err, kerrors.ErrAlreadyInitialized):
		return ui.ErrorLine("jupwallet has already been initialized") + "\n" +
			ui.HintLine("Run %s to start over. All wallets will be lost", ui.Code.Sprint("jupwallet init --force"))

	case errors.Is(err, kerrors.ErrInvalidPassword):
		return ui.ErrorLine("Invalid master password")

	case errors.Is(err, kerrors.ErrEmptyPassword):
		return ui.ErrorLine("Master password cannot be empty")

	case errors.Is(err, kerrors.ErrPasswordMismatch):
		return ui.ErrorLine("Passwords do not match")

	case errors.Is(err, kerrors.ErrSessionNotAuthenticated):
		return ui.ErrorLine("No active session") + "\n" +
			ui.HintLine("Run %s or set %s", ui.Code.Sprint("jupwallet unlock --persist"), ui.Flag.Sprint(EnvMasterPassword))

	case errors.Is(err, kerrors.ErrIntegrityFailure):
		return ui.ErrorLine("Decryption failed: the data was not encrypted with the current session key") + "\n" +
			ui.HintLine("Wallets created before %s cannot be recovered", ui.Code.Sprint("jupwallet session regenerate"))

	case errors.Is(err, kerrors.ErrWalletNotFound):
		return ui.ErrorLine("Wallet not found") + "\n" +
			ui.HintLine("Run %s to see stored wallets", ui.Code.Sprint("jupwallet wallet list --all"))

	case errors.Is(err, kerrors.ErrWalletAlreadyExists):
		return ui.ErrorLine("A wallet with this address is already stored")

	case errors.Is(err, kerrors.ErrInvalidPrivateKey):
		return ui.ErrorLine("Invalid private key") + "\n" +
			ui.HintLine("Expected a base58 key or seed, or a solana-keygen JSON byte array")

	case errors.Is(err, kerrors.ErrInvalidWalletName):
		return ui.ErrorLine("%s", err.Error())

	case errors.Is(err, kerrors.ErrUnknownDriver):
		return ui.ErrorLine("%s", err.Error()) + "\n" +
			ui.HintLine("Supported drivers are %s and %s", ui.Highlight.Sprint("sqlite"), ui.Highlight.Sprint("bolt"))

	case errors.Is(err, kerrors.ErrInvalidConfig):
		return ui.ErrorLine("%s", err.Error())

	case errors.Is(err, kerrors.ErrTTYRequired):
		return ui.ErrorLine("This command requires an interactive terminal") + "\n" +
			ui.HintLine("Run it directly in your terminal or set %s", ui.Flag.Sprint(EnvMasterPassword))

	case errors.Is(err, kerrors.ErrAborted):
		return ui.WarningLine("Aborted")

	default:
		return ui.ErrorLine("%s", err.Error())
	}
}

// printError prints a formatted error and marks it reported.
func printError(err error) error {
	fmt.Println(formatError(err))
	return reported(err)
}
