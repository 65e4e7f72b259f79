package cmd

import (
	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/session"
	"github.com/PolarWolf314/jupwallet/internal/workflows"

	logger "github.com/PolarWolf314/jupwallet/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvMasterPassword supplies the master password to non-interactive runs.
const EnvMasterPassword = "JUPWALLET_MASTER_PASSWORD"

var (
	verbose bool
	debug   bool
	dataDir string
	Logger  logger.Logger

	// kdf and machineKey are nil in production, selecting the defaults.
	kdf        *secrets.KDF
	machineKey session.MachineKeySource

	RootCmd = &cobra.Command{
		Use:   "jupwallet",
		Short: "jupwallet - a local wallet keystore protected by a master password",
		Long: `jupwallet keeps Solana wallet private keys encrypted at rest behind one
master password.

A persisted session lets unattended invocations create and use wallets
without the password. Exporting a private key always asks for it.

Examples:
  jupwallet init                      # Set the master password
  jupwallet unlock --persist          # Start a session for later runs
  jupwallet wallet create trading     # Generate a new wallet
  jupwallet wallet list               # Show stored wallets
  jupwallet wallet export trading     # Reveal a private key`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $JUPWALLET_HOME or ~/.solana/jupwallet)")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(unlockCmd)
	RootCmd.AddCommand(WalletCmd)
	RootCmd.AddCommand(SessionCmd)
	RootCmd.AddCommand(ConfigCmd)
	RootCmd.AddCommand(logCmd)
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// envOptions returns the options used to open the wallet environment.
func envOptions() workflows.EnvOptions {
	return workflows.EnvOptions{
		DataDir:    dataDir,
		Logger:     Logger,
		KDF:        kdf,
		MachineKey: machineKey,
	}
}

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	dataDir = ""
	resetInitCommandState()
	resetUnlockCommandState()
	resetWalletCommandState()
	resetSessionCommandState()
	resetConfigCommandState()
	resetLogCommandState()
	resetCobraFlagState(RootCmd)
}

// resetCobraFlagState clears the Changed markers of every flag so one test
// cannot leak flag state into the next.
func resetCobraFlagState(c *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}
