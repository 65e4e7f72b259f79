package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/utils"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	importName  string
	importStdin bool
)

func init() {
	walletImportCmd.Flags().StringVarP(&importName, "name", "n", "", "wallet name (default wallet, wallet-2, ...)")
	walletImportCmd.Flags().BoolVar(&importStdin, "stdin", false, "read the private key from stdin")
}

func resetWalletImportState() {
	importName = ""
	importStdin = false
}

var walletImportCmd = &cobra.Command{
	Use:   "import [private-key]",
	Short: "Import an existing private key",
	Long: `Stores an existing Solana private key.

Accepted formats are a base58 64-byte secret key, a base58 32-byte seed,
or the JSON byte array written by solana-keygen. Passing the key as an
argument leaves it in your shell history, so prefer --stdin.

Examples:
  jupwallet wallet import --stdin --name hot < key.txt
  cat ~/.config/solana/id.json | jupwallet wallet import --stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting wallet import command")

		privateKey, err := importedKey(args)
		if err != nil {
			return printError(err)
		}

		var result *workflows.WalletResult
		err = withEnv(func(ctx context.Context, env *workflows.Env) error {
			return authorized(func(password []byte) error {
				_, cleanup := startSpinner("Importing wallet...", verbose)
				defer cleanup()

				var err error
				result, err = workflows.ImportWallet(ctx, env, workflows.ImportWalletOptions{
					Name:       importName,
					PrivateKey: privateKey,
					Password:   password,
				})
				return err
			})
		})
		if err != nil {
			return printError(err)
		}

		fmt.Println(ui.SuccessLine("Imported wallet %s", ui.Highlight.Sprint(result.Wallet.Name)))
		fmt.Println(formatWalletDetails(result.Wallet))
		return nil
	},
}

func importedKey(args []string) (string, error) {
	if len(args) == 1 {
		if importStdin {
			return "", fmt.Errorf("pass the private key as an argument or with --stdin, not both")
		}
		Logger.Warnf("Private key passed as an argument may be stored in your shell history")
		return strings.TrimSpace(args[0]), nil
	}
	if !importStdin {
		return "", fmt.Errorf("no private key given (hint: use --stdin)")
	}

	data, err := utils.ReadStdin()
	if err != nil {
		return "", err
	}
	defer secrets.Zero(data)
	return strings.TrimSpace(string(data)), nil
}
