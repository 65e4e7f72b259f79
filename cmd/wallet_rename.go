package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var walletRenameCmd = &cobra.Command{
	Use:   "rename <wallet> <new-name>",
	Short: "Change a wallet's name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result *workflows.WalletResult
		err := withEnv(func(ctx context.Context, env *workflows.Env) error {
			var err error
			result, err = workflows.RenameWallet(ctx, env, args[0], args[1])
			return err
		})
		if err != nil {
			return printError(err)
		}

		fmt.Println(ui.SuccessLine("Renamed %s to %s", ui.Address.Sprint(result.Wallet.Address), ui.Highlight.Sprint(result.Wallet.Name)))
		return nil
	},
}
