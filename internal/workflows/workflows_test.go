package workflows

import (
	"context"
	"crypto/ed25519"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcutil/base58"

	"github.com/PolarWolf314/jupwallet/internal/audit"
	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	"github.com/PolarWolf314/jupwallet/internal/master"
	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/session"
)

const testPassword = "Sw0rdfish!"

type testMachine string

func (m testMachine) MachineKey() (*secrets.Key, error) {
	return session.DeriveMachineKey(string(m))
}

func testEnvOptions(t *testing.T) EnvOptions {
	t.Helper()
	return EnvOptions{
		DataDir:    filepath.Join(t.TempDir(), "jupwallet"),
		KDF:        secrets.NewKDF(secrets.Argon2Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}),
		MachineKey: testMachine("test-host:test-user"),
	}
}

func initEnv(t *testing.T, opts EnvOptions, startSession bool) {
	t.Helper()
	_, err := Init(context.Background(), InitOptions{
		EnvOptions:   opts,
		Password:     []byte(testPassword),
		StartSession: startSession,
	})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
}

func openTestEnv(t *testing.T, opts EnvOptions) *Env {
	t.Helper()
	env, err := OpenEnv(opts)
	if err != nil {
		t.Fatalf("OpenEnv failed: %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return env
}

func auditOps(t *testing.T, env *Env) []string {
	t.Helper()
	entries, err := env.Audit.ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	ops := make([]string, len(entries))
	for i, e := range entries {
		ops[i] = e.Operation
		if e.Failed {
			ops[i] += "!"
		}
	}
	return ops
}

func TestOpenEnvNotInitialized(t *testing.T) {
	_, err := OpenEnv(testEnvOptions(t))
	if !errors.Is(err, kerrors.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestInit(t *testing.T) {
	opts := testEnvOptions(t)

	result, err := Init(context.Background(), InitOptions{EnvOptions: opts, Password: []byte(testPassword)})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if result.InstallationID == "" {
		t.Error("Expected an installation id")
	}
	if result.SessionStarted {
		t.Error("Session should not start unless requested")
	}
	for _, path := range []string{result.ConfigPath, result.DatabasePath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}

	env := openTestEnv(t, opts)
	state, err := env.Master.State(context.Background())
	if err != nil || state != master.Initialized {
		t.Errorf("Expected initialized state, got %v (err %v)", state, err)
	}
	if ops := auditOps(t, env); len(ops) != 1 || ops[0] != audit.OpInit {
		t.Errorf("Expected a single init audit entry, got %v", ops)
	}
}

func TestInitTwice(t *testing.T) {
	ctx := context.Background()
	opts := testEnvOptions(t)
	initEnv(t, opts, false)

	_, err := Init(ctx, InitOptions{EnvOptions: opts, Password: []byte("other")})
	if !errors.Is(err, kerrors.ErrAlreadyInitialized) {
		t.Fatalf("Expected ErrAlreadyInitialized, got %v", err)
	}

	env := openTestEnv(t, opts)
	if !env.Master.VerifyPassword(ctx, []byte(testPassword)) {
		t.Error("The original password must still verify")
	}
}

func TestInitForce(t *testing.T) {
	ctx := context.Background()
	opts := testEnvOptions(t)
	initEnv(t, opts, false)

	result, err := Init(ctx, InitOptions{EnvOptions: opts, Password: []byte("replacement"), Force: true})
	if err != nil {
		t.Fatalf("Init --force failed: %v", err)
	}
	if !result.Reinitialized {
		t.Error("Expected Reinitialized to be set")
	}

	env := openTestEnv(t, opts)
	if env.Master.VerifyPassword(ctx, []byte(testPassword)) {
		t.Error("The old password must no longer verify")
	}
	if !env.Master.VerifyPassword(ctx, []byte("replacement")) {
		t.Error("The new password must verify")
	}
}

func TestInitEmptyPassword(t *testing.T) {
	opts := testEnvOptions(t)
	_, err := Init(context.Background(), InitOptions{EnvOptions: opts})
	if !errors.Is(err, kerrors.ErrEmptyPassword) {
		t.Fatalf("Expected ErrEmptyPassword, got %v", err)
	}
	if _, err := os.Stat(opts.DataDir); !os.IsNotExist(err) {
		t.Error("A rejected init must not create the data directory")
	}
}

func TestInitBoltDriver(t *testing.T) {
	opts := testEnvOptions(t)
	result, err := Init(context.Background(), InitOptions{EnvOptions: opts, Password: []byte(testPassword), Driver: "bolt"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if filepath.Ext(result.DatabasePath) != ".bolt" {
		t.Errorf("Expected a bolt database, got %s", result.DatabasePath)
	}

	env := openTestEnv(t, opts)
	if env.Config.Database.Driver != "bolt" {
		t.Errorf("Expected bolt driver in config, got %q", env.Config.Database.Driver)
	}
}

func TestInitUnknownDriver(t *testing.T) {
	opts := testEnvOptions(t)
	_, err := Init(context.Background(), InitOptions{EnvOptions: opts, Password: []byte(testPassword), Driver: "postgres"})
	if !errors.Is(err, kerrors.ErrUnknownDriver) {
		t.Fatalf("Expected ErrUnknownDriver, got %v", err)
	}
}

func TestUnlock(t *testing.T) {
	ctx := context.Background()
	opts := testEnvOptions(t)
	initEnv(t, opts, false)
	env := openTestEnv(t, opts)

	if _, err := Unlock(ctx, env, UnlockOptions{Password: []byte("wrong")}); !errors.Is(err, kerrors.ErrInvalidPassword) {
		t.Fatalf("Expected ErrInvalidPassword, got %v", err)
	}

	result, err := Unlock(ctx, env, UnlockOptions{Password: []byte(testPassword), Persist: true})
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if result.State != master.Authenticated || !result.Persisted {
		t.Errorf("Unexpected result: %+v", result)
	}

	ops := auditOps(t, env)
	want := []string{audit.OpInit, audit.OpUnlock + "!", audit.OpUnlock, audit.OpSessionStart}
	if len(ops) != len(want) {
		t.Fatalf("Expected audit ops %v, got %v", want, ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("Audit op %d: expected %s, got %s", i, want[i], ops[i])
		}
	}
}

func TestWalletNeedsSessionOrPassword(t *testing.T) {
	ctx := context.Background()
	opts := testEnvOptions(t)
	initEnv(t, opts, false)
	env := openTestEnv(t, opts)

	_, err := CreateWallet(ctx, env, CreateWalletOptions{Name: "main"})
	if !errors.Is(err, kerrors.ErrSessionNotAuthenticated) {
		t.Fatalf("Expected ErrSessionNotAuthenticated, got %v", err)
	}

	result, err := CreateWallet(ctx, env, CreateWalletOptions{Name: "main", Password: []byte(testPassword)})
	if err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}
	if result.Source != SourcePassword {
		t.Errorf("Expected password source, got %q", result.Source)
	}
}

// TestAgentFlow covers an operator who initializes with a session and a
// later unattended process that creates and lists wallets without the
// password, but cannot export keys.
func TestAgentFlow(t *testing.T) {
	ctx := context.Background()
	opts := testEnvOptions(t)
	initEnv(t, opts, true)

	agent := openTestEnv(t, opts)

	created, err := CreateWallet(ctx, agent, CreateWalletOptions{})
	if err != nil {
		t.Fatalf("CreateWallet via session failed: %v", err)
	}
	if created.Source != SourceSession {
		t.Errorf("Expected session source, got %q", created.Source)
	}
	if created.Wallet.Name != "wallet" {
		t.Errorf("Expected default name 'wallet', got %q", created.Wallet.Name)
	}

	second, err := CreateWallet(ctx, agent, CreateWalletOptions{})
	if err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}
	if second.Wallet.Name != "wallet-2" {
		t.Errorf("Expected 'wallet-2', got %q", second.Wallet.Name)
	}

	if _, err := ExportWallet(ctx, agent, created.Wallet.ID, nil); !errors.Is(err, kerrors.ErrInvalidPassword) {
		t.Errorf("Export without password must fail, got %v", err)
	}

	exported, err := ExportWallet(ctx, agent, created.Wallet.Name, []byte(testPassword))
	if err != nil {
		t.Fatalf("ExportWallet failed: %v", err)
	}
	if exported.Wallet.LastUsed == nil {
		t.Error("Expected export to mark the wallet used")
	}
	if len(base58.Decode(exported.PrivateKey)) != ed25519.PrivateKeySize {
		t.Errorf("Expected a 64-byte base58 private key")
	}

	list, err := ListWallets(ctx, agent, false)
	if err != nil || len(list) != 2 {
		t.Fatalf("Expected 2 wallets, got %d (err %v)", len(list), err)
	}
}

func TestImportWallet(t *testing.T) {
	ctx := context.Background()
	opts := testEnvOptions(t)
	initEnv(t, opts, true)
	env := openTestEnv(t, opts)

	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 7
	priv := ed25519.NewKeyFromSeed(seed)

	result, err := ImportWallet(ctx, env, ImportWalletOptions{Name: "imported", PrivateKey: base58.Encode(priv)})
	if err != nil {
		t.Fatalf("ImportWallet failed: %v", err)
	}
	if result.Wallet.Address != base58.Encode(priv[32:]) {
		t.Errorf("Unexpected address %s", result.Wallet.Address)
	}

	_, err = ImportWallet(ctx, env, ImportWalletOptions{Name: "dup", PrivateKey: base58.Encode(priv)})
	if !errors.Is(err, kerrors.ErrWalletAlreadyExists) {
		t.Errorf("Expected ErrWalletAlreadyExists, got %v", err)
	}

	exported, err := ExportWallet(ctx, env, result.Wallet.Address, []byte(testPassword))
	if err != nil {
		t.Fatalf("ExportWallet failed: %v", err)
	}
	if exported.PrivateKey != base58.Encode(priv) {
		t.Error("Exported key differs from the imported one")
	}
}

func TestRenameDeleteRestore(t *testing.T) {
	ctx := context.Background()
	opts := testEnvOptions(t)
	initEnv(t, opts, true)
	env := openTestEnv(t, opts)

	created, err := CreateWallet(ctx, env, CreateWalletOptions{Name: "main"})
	if err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}

	if _, err := RenameWallet(ctx, env, "main", "trading"); err != nil {
		t.Fatalf("RenameWallet failed: %v", err)
	}
	if _, err := ShowWallet(ctx, env, "trading"); err != nil {
		t.Errorf("Expected to find the renamed wallet: %v", err)
	}

	if _, err := DeleteWallet(ctx, env, DeleteWalletOptions{Ref: "trading"}); err != nil {
		t.Fatalf("DeleteWallet failed: %v", err)
	}
	active, _ := ListWallets(ctx, env, false)
	if len(active) != 0 {
		t.Errorf("Expected no active wallets, got %d", len(active))
	}

	if _, err := RestoreWallet(ctx, env, created.Wallet.ID); err != nil {
		t.Fatalf("RestoreWallet failed: %v", err)
	}
	active, _ = ListWallets(ctx, env, false)
	if len(active) != 1 {
		t.Errorf("Expected the wallet to be active again, got %d", len(active))
	}

	if _, err := DeleteWallet(ctx, env, DeleteWalletOptions{Ref: created.Wallet.ID, Permanent: true}); err != nil {
		t.Fatalf("Permanent DeleteWallet failed: %v", err)
	}
	if _, err := ShowWallet(ctx, env, created.Wallet.ID); !errors.Is(err, kerrors.ErrWalletNotFound) {
		t.Errorf("Expected ErrWalletNotFound, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	opts := testEnvOptions(t)
	initEnv(t, opts, false)
	env := openTestEnv(t, opts)

	status, err := SessionStatus(ctx, env)
	if err != nil {
		t.Fatalf("SessionStatus failed: %v", err)
	}
	if status.Active || status.FilePresent || !status.Initialized {
		t.Errorf("Unexpected status before start: %+v", status)
	}

	if _, err := StartSession(ctx, env, []byte("wrong")); !errors.Is(err, kerrors.ErrInvalidPassword) {
		t.Fatalf("Expected ErrInvalidPassword, got %v", err)
	}

	status, err = StartSession(ctx, env, []byte(testPassword))
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if !status.Active || !status.FilePresent {
		t.Errorf("Expected an active session, got %+v", status)
	}

	created, err := CreateWallet(ctx, env, CreateWalletOptions{Name: "main"})
	if err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}

	status, err = ClearSession(ctx, env)
	if err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if status.Active || status.FilePresent || status.State != master.Initialized {
		t.Errorf("Expected no session after clear, got %+v", status)
	}
	if status.WalletCount != 1 {
		t.Errorf("Clearing the session must keep wallets, got count %d", status.WalletCount)
	}

	// Regeneration makes existing wallets unreadable.
	if _, err := RegenerateSession(ctx, env, []byte(testPassword)); err != nil {
		t.Fatalf("RegenerateSession failed: %v", err)
	}
	if _, err := ExportWallet(ctx, env, created.Wallet.ID, []byte(testPassword)); !errors.Is(err, kerrors.ErrIntegrityFailure) {
		t.Errorf("Expected ErrIntegrityFailure after regeneration, got %v", err)
	}
}

// TestReinitAfterLostStore covers a database directory removed while the
// config and session file remain. Re-initializing must not leave the old
// session key usable.
func TestReinitAfterLostStore(t *testing.T) {
	tests := []struct {
		name         string
		startSession bool
	}{
		{"without session", false},
		{"with session", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			opts := testEnvOptions(t)
			initEnv(t, opts, true)

			sessionPath := filepath.Join(opts.DataDir, "session", session.FileName)
			stale, err := os.ReadFile(sessionPath)
			if err != nil {
				t.Fatalf("Expected a session file after init: %v", err)
			}

			if err := os.RemoveAll(filepath.Join(opts.DataDir, "data")); err != nil {
				t.Fatalf("Failed to remove database dir: %v", err)
			}
			initEnv(t, opts, tt.startSession)

			if !tt.startSession {
				if _, err := os.Stat(sessionPath); !os.IsNotExist(err) {
					t.Fatalf("Expected re-init to remove the stale session file, got %v", err)
				}
				// A stale file put back by hand is still rejected.
				if err := os.WriteFile(sessionPath, stale, 0600); err != nil {
					t.Fatalf("Failed to restore session file: %v", err)
				}
			}

			env := openTestEnv(t, opts)
			password := []byte(testPassword)
			if tt.startSession {
				password = nil
			} else {
				if _, err := CreateWallet(ctx, env, CreateWalletOptions{Name: "main"}); !errors.Is(err, kerrors.ErrSessionNotAuthenticated) {
					t.Fatalf("Expected ErrSessionNotAuthenticated with a stale session file, got %v", err)
				}
			}

			created, err := CreateWallet(ctx, env, CreateWalletOptions{Name: "main", Password: password})
			if err != nil {
				t.Fatalf("CreateWallet failed: %v", err)
			}
			exported, err := ExportWallet(ctx, env, created.Wallet.ID, []byte(testPassword))
			if err != nil {
				t.Fatalf("Wallet created after re-init must export, got %v", err)
			}
			if len(base58.Decode(exported.PrivateKey)) != ed25519.PrivateKeySize {
				t.Errorf("Expected a 64-byte base58 private key")
			}
		})
	}
}

func TestConfigShowAndInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "jupwallet")

	shown, err := ConfigShow(dir)
	if err != nil {
		t.Fatalf("ConfigShow failed: %v", err)
	}
	if shown.FromFile || shown.Config.Database.Driver != "sqlite" {
		t.Errorf("Expected defaults without a file, got %+v", shown)
	}

	written, err := ConfigInit(dir, false)
	if err != nil {
		t.Fatalf("ConfigInit failed: %v", err)
	}
	if !written.Written || written.Config.Installation.ID == "" {
		t.Errorf("Expected a written config with an id, got %+v", written)
	}

	again, err := ConfigInit(dir, false)
	if err != nil {
		t.Fatalf("ConfigInit failed: %v", err)
	}
	if again.Written {
		t.Error("ConfigInit must not overwrite without the flag")
	}

	overwritten, err := ConfigInit(dir, true)
	if err != nil {
		t.Fatalf("ConfigInit overwrite failed: %v", err)
	}
	if overwritten.Config.Installation.ID != written.Config.Installation.ID {
		t.Error("Overwriting must keep the installation id")
	}
}

func TestLogFilters(t *testing.T) {
	ctx := context.Background()
	opts := testEnvOptions(t)

	if _, err := Log(LogOptions{DataDir: opts.DataDir}); !errors.Is(err, kerrors.ErrNoAuditLog) {
		t.Fatalf("Expected ErrNoAuditLog, got %v", err)
	}

	initEnv(t, opts, false)
	env := openTestEnv(t, opts)
	Unlock(ctx, env, UnlockOptions{Password: []byte("wrong")})
	created, err := CreateWallet(ctx, env, CreateWalletOptions{Name: "main", Password: []byte(testPassword)})
	if err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}

	all, err := Log(LogOptions{DataDir: opts.DataDir})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if all.TotalEntriesBeforeFilter != 3 || len(all.Entries) != 3 {
		t.Errorf("Expected 3 entries, got %d/%d", len(all.Entries), all.TotalEntriesBeforeFilter)
	}

	tests := []struct {
		name string
		opts LogOptions
		want int
	}{
		{"operation", LogOptions{Operations: "unlock"}, 1},
		{"several operations", LogOptions{Operations: "init, wallet.create"}, 2},
		{"failed only", LogOptions{FailedOnly: true}, 1},
		{"wallet by name", LogOptions{Wallet: "main"}, 1},
		{"wallet by id", LogOptions{Wallet: created.Wallet.ID}, 1},
		{"limit", LogOptions{Limit: 2}, 2},
		{"since far past", LogOptions{Since: "2000-01-01"}, 3},
		{"until far past", LogOptions{Until: "2000-01-01"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.DataDir = opts.DataDir
			result, err := Log(tt.opts)
			if err != nil {
				t.Fatalf("Log failed: %v", err)
			}
			if len(result.Entries) != tt.want {
				t.Errorf("Expected %d entries, got %d", tt.want, len(result.Entries))
			}
		})
	}

	reversed, _ := Log(LogOptions{DataDir: opts.DataDir, Reverse: true, Limit: 1})
	if len(reversed.Entries) != 1 || reversed.Entries[0].Operation != audit.OpWalletCreate {
		t.Errorf("Expected the most recent entry first, got %+v", reversed.Entries)
	}

	if _, err := Log(LogOptions{DataDir: opts.DataDir, Since: "yesterday"}); !errors.Is(err, kerrors.ErrInvalidDateFormat) {
		t.Errorf("Expected ErrInvalidDateFormat, got %v", err)
	}
}
