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
	"github.com/spf13/cobra"
)

var exportStdout bool

func init() {
	walletExportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "print the key to stdout instead of the terminal")
}

func resetWalletExportState() {
	exportStdout = false
}

var walletExportCmd = &cobra.Command{
	Use:   "export <wallet>",
	Short: "Reveal a wallet's private key",
	Long: `Decrypts and shows a wallet's base58 private key.

The master password is always required, even with an active session.
The key is written to the terminal and the screen is cleared once you
press Enter. Use --stdout to pipe it somewhere instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting wallet export command")

		if !exportStdout && !utils.IsTTYAvailable() {
			return printError(kerrors.ErrTTYRequired)
		}

		password, err := readMasterPassword("Master password: ")
		if err != nil {
			return printError(err)
		}
		defer secrets.Zero(password)

		spinner, cleanup := startSpinner("Decrypting private key...", verbose)
		var result *workflows.ExportWalletResult
		err = withEnv(func(ctx context.Context, env *workflows.Env) error {
			var err error
			result, err = workflows.ExportWallet(ctx, env, args[0], password)
			return err
		})
		if err != nil {
			spinner.FinalMSG = formatError(err)
			cleanup()
			return reported(err)
		}
		// Stop the spinner before the key is written anywhere.
		cleanup()

		if exportStdout {
			fmt.Println(result.PrivateKey)
			return nil
		}

		if err := displayPrivateKeySecurely(result); err != nil {
			return printError(err)
		}
		fmt.Println(ui.SuccessLine("Private key for %s was shown and cleared", ui.Highlight.Sprint(result.Wallet.Name)))
		return nil
	},
}

func displayPrivateKeySecurely(result *workflows.ExportWalletResult) error {
	rule := strings.Repeat("=", 70)
	content := "\n" +
		ui.Warning.Sprint("IMPORTANT:") + " Anyone with this key controls " + ui.Address.Sprint(result.Wallet.Address) + ".\n" +
		"It will be cleared from the screen when you continue.\n\n" +
		rule + "\n\n" +
		result.PrivateKey + "\n\n" +
		rule + "\n\n"
	prompt := "Press " + ui.Highlight.Sprint("Enter") + " when you have copied the key..."

	if err := utils.ShowOnTTY(content, prompt); err != nil {
		return fmt.Errorf("failed to display private key: %w", err)
	}
	return nil
}
