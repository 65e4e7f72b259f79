package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var walletCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Generate a new wallet",
	Long: `Generates a fresh ed25519 keypair and stores the private key encrypted.

The name defaults to "wallet", then "wallet-2" and so on. Uses the active
session, or asks for the master password when there is none.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting wallet create command")

		var name string
		if len(args) == 1 {
			name = args[0]
		}

		var result *workflows.WalletResult
		err := withEnv(func(ctx context.Context, env *workflows.Env) error {
			return authorized(func(password []byte) error {
				_, cleanup := startSpinner("Creating wallet...", verbose)
				defer cleanup()

				var err error
				result, err = workflows.CreateWallet(ctx, env, workflows.CreateWalletOptions{
					Name:     name,
					Password: password,
				})
				return err
			})
		})
		if err != nil {
			return printError(err)
		}

		Logger.Debugf("Wallet created using %s", result.Source)
		fmt.Println(ui.SuccessLine("Created wallet %s", ui.Highlight.Sprint(result.Wallet.Name)))
		fmt.Println(formatWalletDetails(result.Wallet))
		return nil
	},
}
