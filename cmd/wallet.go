package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/wallet"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

// WalletCmd is the parent of the wallet subcommands.
var WalletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Create, import and manage wallets",
	Long: `Wallets are ed25519 keypairs. Private keys are encrypted with a key derived
from the session key and a per-wallet salt.

Creating and importing wallets works with an active session. Exporting a
private key always requires the master password.

A wallet is referenced by its id, its address or its name.`,
}

func init() {
	WalletCmd.AddCommand(walletCreateCmd)
	WalletCmd.AddCommand(walletImportCmd)
	WalletCmd.AddCommand(walletListCmd)
	WalletCmd.AddCommand(walletShowCmd)
	WalletCmd.AddCommand(walletExportCmd)
	WalletCmd.AddCommand(walletRenameCmd)
	WalletCmd.AddCommand(walletDeleteCmd)
	WalletCmd.AddCommand(walletRestoreCmd)
}

func resetWalletCommandState() {
	resetWalletImportState()
	resetWalletListState()
	resetWalletShowState()
	resetWalletExportState()
	resetWalletDeleteState()
}

// withEnv opens the wallet environment for the duration of fn.
func withEnv(fn func(ctx context.Context, env *workflows.Env) error) error {
	env, err := workflows.OpenEnv(envOptions())
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(context.Background(), env)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatWalletDetails(w *wallet.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Name:     %s\n", ui.Highlight.Sprint(w.Name))
	fmt.Fprintf(&b, "  Address:  %s\n", ui.Address.Sprint(w.Address))
	fmt.Fprintf(&b, "  ID:       %s\n", w.ID)
	status := ui.Success.Sprint("active")
	if !w.IsActive {
		status = ui.Warning.Sprint("deleted")
	}
	fmt.Fprintf(&b, "  Status:   %s\n", status)
	fmt.Fprintf(&b, "  Created:  %s\n", formatTime(w.CreatedAt))
	lastUsed := "never"
	if w.LastUsed != nil {
		lastUsed = formatTime(*w.LastUsed)
	}
	fmt.Fprintf(&b, "  Used:     %s", lastUsed)
	return b.String()
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
