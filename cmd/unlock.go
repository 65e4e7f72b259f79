package cmd

import (
	"context"

	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var unlockPersist bool

func init() {
	unlockCmd.Flags().BoolVar(&unlockPersist, "persist", false, "write the session file so later runs stay unlocked")
}

func resetUnlockCommandState() {
	unlockPersist = false
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Authenticate with the master password",
	Long: `Verifies the master password and unwraps the session key.

Without --persist this only checks the password, since the key is dropped
when the process exits. With --persist the session key is written to the
session file, encrypted to this machine, and later runs use it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting unlock command")

		password, err := readMasterPassword("Master password: ")
		if err != nil {
			return printError(err)
		}
		defer secrets.Zero(password)

		spinner, cleanup := startSpinner("Unlocking...", verbose)
		defer cleanup()

		env, err := workflows.OpenEnv(envOptions())
		if err != nil {
			spinner.FinalMSG = formatError(err)
			return reported(err)
		}
		defer env.Close()

		result, err := workflows.Unlock(context.Background(), env, workflows.UnlockOptions{
			Password: password,
			Persist:  unlockPersist,
		})
		if err != nil {
			spinner.FinalMSG = formatError(err)
			return reported(err)
		}

		msg := ui.SuccessLine("Master password verified")
		if result.Persisted {
			msg += "\n" + ui.SuccessLine("Session persisted to %s", ui.Path.Sprint(result.SessionPath)) + "\n" +
				ui.HintLine("Run %s to end it", ui.Code.Sprint("jupwallet session clear"))
		}
		spinner.FinalMSG = msg
		return nil
	},
}
