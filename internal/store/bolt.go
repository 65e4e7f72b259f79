package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

var (
	masterBucket        = []byte("master_secret")
	walletsBucket       = []byte("wallets")
	walletAddressBucket = []byte("wallet_addresses")

	masterKey = []byte(strconv.Itoa(MasterSecretID))
)

// BoltStore is a Store backed by a bbolt file. bbolt holds an exclusive
// file lock, so only one process may have the store open at a time.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if needed) the bbolt file at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{masterBucket, walletsBucket, walletAddressBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bolt buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) FindMasterSecret(ctx context.Context) (*MasterSecret, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var m MasterSecret
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(masterBucket).Get(masterKey)
		if data == nil {
			return ErrRecordNotFound
		}
		return json.Unmarshal(data, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *BoltStore) CreateMasterSecret(ctx context.Context, record *MasterSecret) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.UpdatedAt = record.CreatedAt
	record.ID = MasterSecretID

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(masterBucket)
		if b.Get(masterKey) != nil {
			return ErrRecordExists
		}
		return putJSON(b, masterKey, record)
	})
}

func (s *BoltStore) UpdateMasterSecret(ctx context.Context, update SessionEnvelopeUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(masterBucket)
		data := b.Get(masterKey)
		if data == nil {
			return ErrRecordNotFound
		}

		var m MasterSecret
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("failed to decode master secret: %w", err)
		}
		m.EncryptedSessionKey = update.EncryptedSessionKey
		m.SessionNonce = update.SessionNonce
		m.SessionAuthTag = update.SessionAuthTag
		m.SessionKeyCheck = update.SessionKeyCheck
		m.UpdatedAt = time.Now().UTC()
		return putJSON(b, masterKey, &m)
	})
}

func (s *BoltStore) FindWalletByID(ctx context.Context, id string) (*Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var w *Wallet
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		w, err = getWallet(tx, []byte(id))
		return err
	})
	return w, err
}

func (s *BoltStore) FindWalletByAddress(ctx context.Context, address string) (*Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var w *Wallet
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(walletAddressBucket).Get([]byte(address))
		if id == nil {
			return ErrRecordNotFound
		}
		var err error
		w, err = getWallet(tx, id)
		return err
	})
	return w, err
}

func (s *BoltStore) ListWallets(ctx context.Context, includeInactive bool) ([]*Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wallets []*Wallet
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(walletsBucket).ForEach(func(_, v []byte) error {
			var w Wallet
			if err := json.Unmarshal(v, &w); err != nil {
				return fmt.Errorf("failed to decode wallet: %w", err)
			}
			if w.IsActive || includeInactive {
				wallets = append(wallets, &w)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(wallets, func(i, j int) bool {
		if !wallets[i].CreatedAt.Equal(wallets[j].CreatedAt) {
			return wallets[i].CreatedAt.Before(wallets[j].CreatedAt)
		}
		return wallets[i].Name < wallets[j].Name
	})
	return wallets, nil
}

func (s *BoltStore) CountWallets(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(walletsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) CreateWallet(ctx context.Context, wallet *Wallet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		wb := tx.Bucket(walletsBucket)
		ab := tx.Bucket(walletAddressBucket)
		if wb.Get([]byte(wallet.ID)) != nil || ab.Get([]byte(wallet.Address)) != nil {
			return ErrRecordExists
		}
		if err := ab.Put([]byte(wallet.Address), []byte(wallet.ID)); err != nil {
			return err
		}
		return putJSON(wb, []byte(wallet.ID), wallet)
	})
}

func (s *BoltStore) UpdateWallet(ctx context.Context, wallet *Wallet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		existing, err := getWallet(tx, []byte(wallet.ID))
		if err != nil {
			return err
		}
		existing.Name = wallet.Name
		existing.IsActive = wallet.IsActive
		existing.LastUsed = wallet.LastUsed
		return putJSON(tx.Bucket(walletsBucket), []byte(existing.ID), existing)
	})
}

func (s *BoltStore) DeleteWallet(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		existing, err := getWallet(tx, []byte(id))
		if err != nil {
			return err
		}
		if err := tx.Bucket(walletAddressBucket).Delete([]byte(existing.Address)); err != nil {
			return err
		}
		return tx.Bucket(walletsBucket).Delete([]byte(id))
	})
}

func getWallet(tx *bbolt.Tx, id []byte) (*Wallet, error) {
	data := tx.Bucket(walletsBucket).Get(id)
	if data == nil {
		return nil, ErrRecordNotFound
	}
	var w Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode wallet: %w", err)
	}
	return &w, nil
}

func putJSON(b *bbolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}
