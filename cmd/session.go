package cmd

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	sessionYes  bool
	sessionJSON bool
)

// SessionCmd is the parent of the session subcommands.
var SessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the persisted session",
	Long: `The session file holds the session key encrypted to this machine, so
unattended runs can create and use wallets without the master password.

Anyone who can read the file as you on this machine can recover the key.
Clear the session when agents no longer need it.`,
}

func init() {
	sessionRegenerateCmd.Flags().BoolVarP(&sessionYes, "yes", "y", false, "skip the confirmation prompt")
	sessionStatusCmd.Flags().BoolVar(&sessionJSON, "json", false, "output as JSON")

	SessionCmd.AddCommand(sessionStartCmd)
	SessionCmd.AddCommand(sessionStatusCmd)
	SessionCmd.AddCommand(sessionRegenerateCmd)
	SessionCmd.AddCommand(sessionClearCmd)
}

func resetSessionCommandState() {
	sessionYes = false
	sessionJSON = false
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Persist the session key for later runs",
	Long:  `Unwraps the existing session key with the master password and writes the session file. Stored wallets stay readable.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSessionWithPassword("Starting session...", workflows.StartSession,
			func(r *workflows.SessionResult) string {
				return ui.SuccessLine("Session persisted to %s", ui.Path.Sprint(r.SessionPath))
			})
	},
}

var sessionRegenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Replace the session key",
	Long: `Generates a new random session key and persists it.

Every wallet encrypted under the old key becomes unreadable. Export any
key you need before regenerating.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sessionYes {
			fmt.Println(ui.WarningLine("Existing wallets will no longer be decryptable"))
			if !confirmAction("Do you want to continue?") {
				return printError(kerrors.ErrAborted)
			}
		}
		return runSessionWithPassword("Regenerating session key...", workflows.RegenerateSession,
			func(r *workflows.SessionResult) string {
				msg := ui.SuccessLine("Session key regenerated")
				if r.WalletCount > 0 {
					msg += "\n" + ui.WarningLine("%d stored wallet(s) were encrypted with the old key", r.WalletCount)
				}
				return msg
			})
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the persisted session",
	Long:  `Deletes the session file. The master password and the wallets are untouched.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var result *workflows.SessionResult
		err := withEnv(func(ctx context.Context, env *workflows.Env) error {
			var err error
			result, err = workflows.ClearSession(ctx, env)
			return err
		})
		if err != nil {
			return printError(err)
		}
		fmt.Println(ui.SuccessLine("Session cleared"))
		Logger.Debugf("Session file present after clear: %t", result.FilePresent)
		return nil
	},
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var result *workflows.SessionResult
		err := withEnv(func(ctx context.Context, env *workflows.Env) error {
			var err error
			result, err = workflows.SessionStatus(ctx, env)
			return err
		})
		if err != nil {
			return printError(err)
		}

		if sessionJSON {
			return printJSON(map[string]any{
				"initialized": result.Initialized,
				"active":      result.Active,
				"filePresent": result.FilePresent,
				"sessionPath": result.SessionPath,
				"createdAt":   result.CreatedAt,
				"walletCount": result.WalletCount,
			})
		}

		if result.Active {
			fmt.Println(ui.SuccessLine("Session active"))
		} else if result.FilePresent {
			fmt.Println(ui.WarningLine("Session file present but unreadable on this machine"))
			fmt.Println(ui.HintLine("Run %s to replace it", ui.Code.Sprint("jupwallet session start")))
		} else {
			fmt.Println(ui.WarningLine("No active session"))
			fmt.Println(ui.HintLine("Run %s to start one", ui.Code.Sprint("jupwallet session start")))
		}
		fmt.Printf("  Session file:  %s\n", ui.Path.Sprint(result.SessionPath))
		fmt.Printf("  Initialized:   %s\n", formatTime(result.CreatedAt))
		fmt.Printf("  Wallets:       %d\n", result.WalletCount)
		return nil
	},
}

func runSessionWithPassword(
	message string,
	run func(context.Context, *workflows.Env, []byte) (*workflows.SessionResult, error),
	success func(*workflows.SessionResult) string,
) error {
	password, err := readMasterPassword("Master password: ")
	if err != nil {
		return printError(err)
	}
	defer secrets.Zero(password)

	spinner, cleanup := startSpinner(message, verbose)
	defer cleanup()

	var result *workflows.SessionResult
	err = withEnv(func(ctx context.Context, env *workflows.Env) error {
		var err error
		result, err = run(ctx, env, password)
		return err
	})
	if err != nil {
		spinner.FinalMSG = formatError(err)
		return reported(err)
	}
	spinner.FinalMSG = success(result)
	return nil
}
