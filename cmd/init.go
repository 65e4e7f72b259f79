package cmd

import (
	"context"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/utils"
	"github.com/PolarWolf314/jupwallet/internal/workflows"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var (
	initDriver       string
	initForce        bool
	initYes          bool
	initStartSession bool
)

func init() {
	initCmd.Flags().StringVar(&initDriver, "driver", "", "record store driver: sqlite or bolt (default from config, sqlite)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "wipe an existing installation, including every wallet")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "skip the confirmation prompt for --force")
	initCmd.Flags().BoolVar(&initStartSession, "start-session", false, "persist a session so later runs need no password")
}

func resetInitCommandState() {
	initDriver = ""
	initForce = false
	initYes = false
	initStartSession = false
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set the master password and create the keystore",
	Long: `Creates the data directory, the config file and the master secret.

The master password protects every wallet. It cannot be recovered, and
forgetting it means losing access to all stored private keys.

Examples:
  jupwallet init                       # Interactive setup
  jupwallet init --start-session       # Also unlock later runs
  jupwallet init --driver bolt         # Use the bbolt record store
  jupwallet init --force               # Wipe and start over`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting init command")

	if !verbose && !debug {
		figure.NewColorFigure("jupwallet", "small", "green", true).Print()
		fmt.Println()
	}

	if initForce && !initYes {
		fmt.Println(ui.WarningLine("--force deletes the existing installation and every stored wallet"))
		if !confirmAction("Do you want to continue?") {
			return printError(kerrors.ErrAborted)
		}
	}

	password, err := readNewMasterPassword()
	if err != nil {
		return printError(err)
	}
	defer secrets.Zero(password)

	spinner, cleanup := startSpinner("Deriving keys...", verbose)
	defer cleanup()

	result, err := workflows.Init(context.Background(), workflows.InitOptions{
		EnvOptions:   envOptions(),
		Password:     password,
		Driver:       initDriver,
		Force:        initForce,
		StartSession: initStartSession,
	})
	if err != nil {
		spinner.FinalMSG = formatError(err)
		return reported(err)
	}

	msg := ui.SuccessLine("jupwallet initialized in %s", ui.Path.Sprint(result.DataDir))
	if result.Reinitialized {
		msg = ui.SuccessLine("jupwallet reinitialized in %s", ui.Path.Sprint(result.DataDir))
	}
	msg += "\n" + ui.HintLine("Installation %s", ui.Muted.Sprint(result.InstallationID))
	msg += "\n" + ui.HintLine("Files:%s", strings.TrimRight(utils.FormatPaths([]string{result.ConfigPath, result.DatabasePath}), "\n"))
	if result.SessionStarted {
		msg += "\n" + ui.SuccessLine("Session persisted, later runs will not ask for the password")
	} else {
		msg += "\n" + ui.HintLine("Run %s so agents can create wallets without the password", ui.Code.Sprint("jupwallet unlock --persist"))
	}
	msg += "\n" + ui.HintLine("Run %s to generate your first wallet", ui.Code.Sprint("jupwallet wallet create"))
	spinner.FinalMSG = msg
	return nil
}
