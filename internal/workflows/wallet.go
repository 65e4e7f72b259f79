package workflows

import (
	"context"
	"strings"

	"github.com/PolarWolf314/jupwallet/internal/audit"
	"github.com/PolarWolf314/jupwallet/internal/utils"
	"github.com/PolarWolf314/jupwallet/internal/wallet"
)

// WalletResult contains the wallet a workflow acted on.
type WalletResult struct {
	Wallet *wallet.Info

	// Source is how the session key was obtained, when one was needed.
	Source string
}

// CreateWalletOptions configures the create workflow.
type CreateWalletOptions struct {
	// Name defaults to "wallet", "wallet-2" and so on.
	Name string

	// Password may be nil when a session is active.
	Password []byte
}

// CreateWallet generates and stores a new wallet.
func CreateWallet(ctx context.Context, env *Env, opts CreateWalletOptions) (*WalletResult, error) {
	name, err := defaultName(ctx, env, opts.Name)
	if err != nil {
		return nil, err
	}

	source, err := env.authorize(ctx, opts.Password)
	if err != nil {
		return nil, err
	}

	info, err := env.Wallets.Create(ctx, name, opts.Password)
	entry := audit.Entry{Operation: audit.OpWalletCreate, WalletName: name, Source: source}
	if info != nil {
		entry.WalletID, entry.Address = info.ID, info.Address
	}
	env.Audit.Outcome(entry, err)
	if err != nil {
		return nil, err
	}
	return &WalletResult{Wallet: info, Source: source}, nil
}

// ImportWalletOptions configures the import workflow.
type ImportWalletOptions struct {
	Name string

	// PrivateKey is a base58 key or seed, or a solana-keygen byte array.
	PrivateKey string

	Password []byte
}

// ImportWallet stores an existing private key.
//
// Returns ErrInvalidPrivateKey for malformed keys and ErrWalletAlreadyExists
// if the address is already stored.
func ImportWallet(ctx context.Context, env *Env, opts ImportWalletOptions) (*WalletResult, error) {
	name, err := defaultName(ctx, env, opts.Name)
	if err != nil {
		return nil, err
	}

	source, err := env.authorize(ctx, opts.Password)
	if err != nil {
		return nil, err
	}

	info, err := env.Wallets.Import(ctx, name, opts.PrivateKey, opts.Password)
	entry := audit.Entry{Operation: audit.OpWalletImport, WalletName: name, Source: source}
	if info != nil {
		entry.WalletID, entry.Address = info.ID, info.Address
	}
	env.Audit.Outcome(entry, err)
	if err != nil {
		return nil, err
	}
	return &WalletResult{Wallet: info, Source: source}, nil
}

// ListWallets returns stored wallets. No key material is touched.
func ListWallets(ctx context.Context, env *Env, includeInactive bool) ([]*wallet.Info, error) {
	return env.Wallets.List(ctx, includeInactive)
}

// ShowWallet returns one wallet by id, address or name.
func ShowWallet(ctx context.Context, env *Env, ref string) (*wallet.Info, error) {
	return env.Wallets.Get(ctx, ref)
}

// ExportWalletResult contains an exported private key.
type ExportWalletResult struct {
	Wallet *wallet.Info

	// PrivateKey is base58 encoded. Callers must not log it.
	PrivateKey string
}

// ExportWallet decrypts a wallet's private key. The master password is
// always required, even with an active session.
func ExportWallet(ctx context.Context, env *Env, ref string, password []byte) (*ExportWalletResult, error) {
	entry := audit.Entry{Operation: audit.OpWalletExport, Source: SourcePassword}

	info, err := env.Wallets.Get(ctx, ref)
	if err != nil {
		env.Audit.Outcome(entry, err)
		return nil, err
	}
	entry.WalletID, entry.WalletName, entry.Address = info.ID, info.Name, info.Address

	privateKey, err := env.Wallets.Export(ctx, info.ID, password)
	env.Audit.Outcome(entry, err)
	if err != nil {
		return nil, err
	}

	if used, err := env.Wallets.MarkUsed(ctx, info.ID); err == nil {
		info = used
	} else {
		env.Log.Debugf("Failed to mark wallet %s used: %v", info.ID, err)
	}

	return &ExportWalletResult{Wallet: info, PrivateKey: privateKey}, nil
}

// RenameWallet changes a wallet's display name.
func RenameWallet(ctx context.Context, env *Env, ref, name string) (*WalletResult, error) {
	info, err := env.Wallets.Rename(ctx, ref, name)
	entry := audit.Entry{Operation: audit.OpWalletRename, WalletName: name}
	if info != nil {
		entry.WalletID, entry.Address = info.ID, info.Address
	}
	env.Audit.Outcome(entry, err)
	if err != nil {
		return nil, err
	}
	return &WalletResult{Wallet: info}, nil
}

// DeleteWalletOptions configures the delete workflow.
type DeleteWalletOptions struct {
	Ref string

	// Permanent removes the record and its encrypted key. Otherwise the
	// wallet is only deactivated and can be restored.
	Permanent bool
}

// DeleteWallet deactivates or permanently deletes a wallet.
func DeleteWallet(ctx context.Context, env *Env, opts DeleteWalletOptions) (*WalletResult, error) {
	op := audit.OpWalletDeactivate
	remove := env.Wallets.Deactivate
	if opts.Permanent {
		op = audit.OpWalletDelete
		remove = env.Wallets.Delete
	}

	info, err := remove(ctx, opts.Ref)
	entry := audit.Entry{Operation: op}
	if info != nil {
		entry.WalletID, entry.WalletName, entry.Address = info.ID, info.Name, info.Address
	}
	env.Audit.Outcome(entry, err)
	if err != nil {
		return nil, err
	}
	return &WalletResult{Wallet: info}, nil
}

// RestoreWallet reactivates a deactivated wallet.
func RestoreWallet(ctx context.Context, env *Env, ref string) (*WalletResult, error) {
	info, err := env.Wallets.Activate(ctx, ref)
	entry := audit.Entry{Operation: audit.OpWalletRestore}
	if info != nil {
		entry.WalletID, entry.WalletName, entry.Address = info.ID, info.Name, info.Address
	}
	env.Audit.Outcome(entry, err)
	if err != nil {
		return nil, err
	}
	return &WalletResult{Wallet: info}, nil
}

func defaultName(ctx context.Context, env *Env, name string) (string, error) {
	if strings.TrimSpace(name) != "" {
		return name, nil
	}

	existing, err := env.Wallets.List(ctx, true)
	if err != nil {
		return "", err
	}
	names := make([]string, len(existing))
	for i, w := range existing {
		names[i] = w.Name
	}
	return utils.GenerateWalletName("wallet", names), nil
}
