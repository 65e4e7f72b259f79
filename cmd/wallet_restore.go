package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var walletRestoreCmd = &cobra.Command{
	Use:   "restore <wallet>",
	Short: "Reactivate a deleted wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result *workflows.WalletResult
		err := withEnv(func(ctx context.Context, env *workflows.Env) error {
			var err error
			result, err = workflows.RestoreWallet(ctx, env, args[0])
			return err
		})
		if err != nil {
			return printError(err)
		}

		fmt.Println(ui.SuccessLine("Restored wallet %s", ui.Highlight.Sprint(result.Wallet.Name)))
		return nil
	},
}
