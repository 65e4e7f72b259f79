package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
)

var drivers = []string{DriverSQLite, DriverBolt}

func openTestStore(t *testing.T, driver string) Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "wallet."+driver)
	s, err := Open(driver, path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testMasterSecret() *MasterSecret {
	return &MasterSecret{
		PasswordHash:        "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		KDFSalt:             "aabbcc",
		EncryptedSessionKey: "0011",
		SessionNonce:        "2233",
		SessionAuthTag:      "4455",
		SessionKeyCheck:     "6677",
	}
}

func testWallet(id, name, address string) *Wallet {
	return &Wallet{
		ID:           id,
		Name:         name,
		Address:      address,
		EncryptedKey: "deadbeef",
		KeyNonce:     "00",
		KeySalt:      "11",
		KeyAuthTag:   "22",
		IsActive:     true,
	}
}

func forEachDriver(t *testing.T, fn func(t *testing.T, s Store)) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, openTestStore(t, driver))
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("postgres", filepath.Join(t.TempDir(), "db"))
	assert.ErrorIs(t, err, kerrors.ErrUnknownDriver)
}

func TestOpenRestrictsPermissions(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "data")
			path := filepath.Join(dir, "wallet.db")
			s, err := Open(driver, path)
			require.NoError(t, err)
			defer s.Close()

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			dirInfo, err := os.Stat(dir)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
		})
	}
}

func TestMasterSecretLifecycle(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.FindMasterSecret(ctx)
		require.ErrorIs(t, err, ErrRecordNotFound)

		err = s.UpdateMasterSecret(ctx, SessionEnvelopeUpdate{EncryptedSessionKey: "ff"})
		require.ErrorIs(t, err, ErrRecordNotFound)

		record := testMasterSecret()
		require.NoError(t, s.CreateMasterSecret(ctx, record))
		assert.EqualValues(t, MasterSecretID, record.ID)

		got, err := s.FindMasterSecret(ctx)
		require.NoError(t, err)
		assert.True(t, got.Complete())
		assert.Equal(t, record.PasswordHash, got.PasswordHash)
		assert.Equal(t, record.KDFSalt, got.KDFSalt)
		assert.Equal(t, record.EncryptedSessionKey, got.EncryptedSessionKey)
		assert.Equal(t, record.SessionKeyCheck, got.SessionKeyCheck)
		assert.WithinDuration(t, record.CreatedAt, got.CreatedAt, time.Second)

		err = s.CreateMasterSecret(ctx, testMasterSecret())
		require.ErrorIs(t, err, ErrRecordExists)

		update := SessionEnvelopeUpdate{
			EncryptedSessionKey: "cafe",
			SessionNonce:        "babe",
			SessionAuthTag:      "f00d",
			SessionKeyCheck:     "beef",
		}
		require.NoError(t, s.UpdateMasterSecret(ctx, update))

		got, err = s.FindMasterSecret(ctx)
		require.NoError(t, err)
		assert.Equal(t, "cafe", got.EncryptedSessionKey)
		assert.Equal(t, "babe", got.SessionNonce)
		assert.Equal(t, "f00d", got.SessionAuthTag)
		assert.Equal(t, "beef", got.SessionKeyCheck)
		assert.Equal(t, record.PasswordHash, got.PasswordHash, "verifier must not change on rewrap")
		assert.Equal(t, record.KDFSalt, got.KDFSalt, "kdf salt must not change on rewrap")
	})
}

func TestConcurrentMasterSecretCreate(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		const workers = 8

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
			exists  int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.CreateMasterSecret(ctx, testMasterSecret())
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case assert.ErrorIs(t, err, ErrRecordExists):
					exists++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, workers-1, exists)
	})
}

func TestWalletCRUD(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.FindWalletByID(ctx, "missing")
		require.ErrorIs(t, err, ErrRecordNotFound)
		_, err = s.FindWalletByAddress(ctx, "missing")
		require.ErrorIs(t, err, ErrRecordNotFound)

		w := testWallet("id-1", "trading", "Addr1")
		require.NoError(t, s.CreateWallet(ctx, w))
		assert.False(t, w.CreatedAt.IsZero())

		byID, err := s.FindWalletByID(ctx, "id-1")
		require.NoError(t, err)
		assert.Equal(t, "trading", byID.Name)
		assert.Equal(t, "deadbeef", byID.EncryptedKey)
		assert.True(t, byID.IsActive)
		assert.Nil(t, byID.LastUsed)

		byAddr, err := s.FindWalletByAddress(ctx, "Addr1")
		require.NoError(t, err)
		assert.Equal(t, "id-1", byAddr.ID)

		err = s.CreateWallet(ctx, testWallet("id-2", "dup", "Addr1"))
		require.ErrorIs(t, err, ErrRecordExists)

		used := time.Now().UTC().Truncate(time.Second)
		byID.Name = "renamed"
		byID.LastUsed = &used
		byID.EncryptedKey = "ignored"
		require.NoError(t, s.UpdateWallet(ctx, byID))

		got, err := s.FindWalletByID(ctx, "id-1")
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
		require.NotNil(t, got.LastUsed)
		assert.True(t, used.Equal(*got.LastUsed))
		assert.Equal(t, "deadbeef", got.EncryptedKey, "envelope is immutable")

		require.ErrorIs(t, s.UpdateWallet(ctx, testWallet("nope", "x", "y")), ErrRecordNotFound)

		require.NoError(t, s.DeleteWallet(ctx, "id-1"))
		_, err = s.FindWalletByAddress(ctx, "Addr1")
		require.ErrorIs(t, err, ErrRecordNotFound)
		require.ErrorIs(t, s.DeleteWallet(ctx, "id-1"), ErrRecordNotFound)

		// Address is free again after permanent deletion.
		require.NoError(t, s.CreateWallet(ctx, testWallet("id-3", "again", "Addr1")))
	})
}

func TestListAndCountWallets(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		n, err := s.CountWallets(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		base := time.Now().UTC().Add(-time.Hour)
		for i, name := range []string{"alpha", "beta", "gamma"} {
			w := testWallet("id-"+name, name, "Addr-"+name)
			w.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, s.CreateWallet(ctx, w))
		}

		beta, err := s.FindWalletByID(ctx, "id-beta")
		require.NoError(t, err)
		beta.IsActive = false
		require.NoError(t, s.UpdateWallet(ctx, beta))

		active, err := s.ListWallets(ctx, false)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "alpha", active[0].Name)
		assert.Equal(t, "gamma", active[1].Name)

		all, err := s.ListWallets(ctx, true)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, []string{all[0].Name, all[1].Name, all[2].Name})

		n, err = s.CountWallets(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}

func TestCanceledContext(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.FindMasterSecret(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReopenPersists(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "wallet.db")

			s, err := Open(driver, path)
			require.NoError(t, err)
			require.NoError(t, s.CreateMasterSecret(ctx, testMasterSecret()))
			require.NoError(t, s.CreateWallet(ctx, testWallet("id-1", "main", "Addr1")))
			require.NoError(t, s.Close())

			s, err = Open(driver, path)
			require.NoError(t, err)
			defer s.Close()

			_, err = s.FindMasterSecret(ctx)
			require.NoError(t, err)
			n, err := s.CountWallets(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}
