package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/utils"
	"github.com/PolarWolf314/jupwallet/internal/wallet"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	listAll  bool
	listJSON bool
)

func init() {
	walletListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include deleted wallets")
	walletListCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON array")
}

func resetWalletListState() {
	listAll = false
	listJSON = false
}

var walletListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored wallets",
	Long:    `Lists wallets without touching any key material. No password or session is needed.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting wallet list command")

		var wallets []*wallet.Info
		err := withEnv(func(ctx context.Context, env *workflows.Env) error {
			var err error
			wallets, err = workflows.ListWallets(ctx, env, listAll)
			return err
		})
		if err != nil {
			return printError(err)
		}

		if listJSON {
			if wallets == nil {
				wallets = []*wallet.Info{}
			}
			return printJSON(wallets)
		}

		if len(wallets) == 0 {
			fmt.Println("No wallets found.")
			fmt.Println(ui.HintLine("Run %s to generate one", ui.Code.Sprint("jupwallet wallet create")))
			return nil
		}

		for _, w := range wallets {
			line := fmt.Sprintf("%-20s  %-44s  %s", w.Name, w.Address, ui.Muted.Sprint(utils.ShortenAddress(w.ID)))
			if !w.IsActive {
				line += "  " + ui.Warning.Sprint("deleted")
			}
			fmt.Println(line)
		}
		return nil
	},
}
