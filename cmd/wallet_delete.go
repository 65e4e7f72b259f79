package cmd

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	deletePermanent bool
	deleteYes       bool
)

func init() {
	walletDeleteCmd.Flags().BoolVar(&deletePermanent, "permanent", false, "remove the encrypted key instead of deactivating the wallet")
	walletDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt for --permanent")
}

func resetWalletDeleteState() {
	deletePermanent = false
	deleteYes = false
}

var walletDeleteCmd = &cobra.Command{
	Use:     "delete <wallet>",
	Aliases: []string{"rm"},
	Short:   "Delete a wallet",
	Long: `Deactivates a wallet. Deactivated wallets are hidden from the list and
can be brought back with 'jupwallet wallet restore'.

With --permanent the record and its encrypted private key are removed.
Funds held by the address are lost unless the key was exported first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if deletePermanent && !deleteYes {
			fmt.Println(ui.WarningLine("The private key for %s will be destroyed", ui.Highlight.Sprint(args[0])))
			if !confirmAction("Do you want to continue?") {
				return printError(kerrors.ErrAborted)
			}
		}

		var result *workflows.WalletResult
		err := withEnv(func(ctx context.Context, env *workflows.Env) error {
			var err error
			result, err = workflows.DeleteWallet(ctx, env, workflows.DeleteWalletOptions{
				Ref:       args[0],
				Permanent: deletePermanent,
			})
			return err
		})
		if err != nil {
			return printError(err)
		}

		if deletePermanent {
			fmt.Println(ui.SuccessLine("Permanently deleted wallet %s", ui.Highlight.Sprint(result.Wallet.Name)))
			return nil
		}
		fmt.Println(ui.SuccessLine("Deleted wallet %s", ui.Highlight.Sprint(result.Wallet.Name)))
		fmt.Println(ui.HintLine("Run %s to undo", ui.Code.Sprint("jupwallet wallet restore "+result.Wallet.ID)))
		return nil
	},
}
