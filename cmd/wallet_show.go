package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/jupwallet/internal/wallet"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var showJSON bool

func init() {
	walletShowCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
}

func resetWalletShowState() {
	showJSON = false
}

var walletShowCmd = &cobra.Command{
	Use:   "show <wallet>",
	Short: "Show one wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var info *wallet.Info
		err := withEnv(func(ctx context.Context, env *workflows.Env) error {
			var err error
			info, err = workflows.ShowWallet(ctx, env, args[0])
			return err
		})
		if err != nil {
			return printError(err)
		}

		if showJSON {
			return printJSON(info)
		}
		fmt.Println(formatWalletDetails(info))
		return nil
	},
}
