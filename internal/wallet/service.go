package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	logger "github.com/PolarWolf314/jupwallet/internal/logging"
	"github.com/PolarWolf314/jupwallet/internal/master"
	"github.com/PolarWolf314/jupwallet/internal/secrets"
	"github.com/PolarWolf314/jupwallet/internal/store"
)

// Info is the public, secret-free view of a wallet.
type Info struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	LastUsed  *time.Time `json:"lastUsed,omitempty"`
}

func infoOf(w *store.Wallet) *Info {
	return &Info{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		LastUsed:  w.LastUsed,
	}
}

// Service creates, imports and manages wallets.
type Service struct {
	store  store.WalletStore
	master *master.Service
	sealer *secrets.Sealer
	log    logger.Logger
}

// NewService returns a wallet Service.
func NewService(st store.WalletStore, m *master.Service, sealer *secrets.Sealer, log logger.Logger) *Service {
	return &Service{store: st, master: m, sealer: sealer, log: log}
}

// Create generates a new keypair and stores it as name. With a nil password
// the session key cached in the master service is used.
func (s *Service) Create(ctx context.Context, name string, password []byte) (*Info, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	priv, address, err := GenerateKeypair()
	if err != nil {
		return nil, err
	}
	defer priv.Destroy()

	return s.seal(ctx, name, address, priv, password)
}

// Import stores an existing private key as name. See ParsePrivateKey for
// the accepted formats.
func (s *Service) Import(ctx context.Context, name, privateKey string, password []byte) (*Info, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	priv, address, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer priv.Destroy()

	_, err = s.store.FindWalletByAddress(ctx, address)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrWalletAlreadyExists, address)
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing wallet: %w", err)
	}

	return s.seal(ctx, name, address, priv, password)
}

func (s *Service) seal(ctx context.Context, name, address string, priv *secrets.Key, password []byte) (*Info, error) {
	sessionKey, err := s.sessionKey(ctx, password)
	if err != nil {
		return nil, err
	}
	defer sessionKey.Destroy()

	env, err := s.sealer.EncryptSecret(priv.Bytes(), sessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	w := &store.Wallet{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Address:      address,
		EncryptedKey: env.Ciphertext,
		KeyNonce:     env.Nonce,
		KeySalt:      env.Salt,
		KeyAuthTag:   env.AuthTag,
		IsActive:     true,
	}
	err = s.store.CreateWallet(ctx, w)
	if errors.Is(err, store.ErrRecordExists) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrWalletAlreadyExists, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store wallet: %w", err)
	}

	s.log.Debugf("Stored wallet %s (%s)", w.ID, w.Address)
	return infoOf(w), nil
}

// List returns active wallets, or all of them when includeInactive is set.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]*Info, error) {
	wallets, err := s.store.ListWallets(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	infos := make([]*Info, len(wallets))
	for i, w := range wallets {
		infos[i] = infoOf(w)
	}
	return infos, nil
}

// Get looks a wallet up by id, address or exact name, in that order.
// Inactive wallets are found too.
func (s *Service) Get(ctx context.Context, ref string) (*Info, error) {
	w, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return infoOf(w), nil
}

// Export decrypts and returns the base58 private key. The master password
// is always required; a cached or persisted session is never enough.
func (s *Service) Export(ctx context.Context, ref string, password []byte) (string, error) {
	w, err := s.resolve(ctx, ref)
	if err != nil {
		return "", err
	}

	sessionKey, err := s.master.SessionKeyWithPassword(ctx, password)
	if err != nil {
		return "", err
	}
	defer sessionKey.Destroy()

	plain, err := s.sealer.DecryptSecret(secrets.Envelope{
		Ciphertext: w.EncryptedKey,
		Nonce:      w.KeyNonce,
		Salt:       w.KeySalt,
		AuthTag:    w.KeyAuthTag,
	}, sessionKey)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt wallet %s: %w", w.Name, err)
	}

	priv := secrets.NewKey(plain)
	defer priv.Destroy()
	return EncodePrivateKey(priv), nil
}

// Rename changes a wallet's display name.
func (s *Service) Rename(ctx context.Context, ref, name string) (*Info, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return s.update(ctx, ref, func(w *store.Wallet) {
		w.Name = strings.TrimSpace(name)
	})
}

// MarkUsed records that the wallet was just used.
func (s *Service) MarkUsed(ctx context.Context, ref string) (*Info, error) {
	return s.update(ctx, ref, func(w *store.Wallet) {
		now := time.Now().UTC()
		w.LastUsed = &now
	})
}

// Deactivate hides a wallet from the default listing without deleting its
// key.
func (s *Service) Deactivate(ctx context.Context, ref string) (*Info, error) {
	return s.update(ctx, ref, func(w *store.Wallet) {
		w.IsActive = false
	})
}

// Activate reverses Deactivate.
func (s *Service) Activate(ctx context.Context, ref string) (*Info, error) {
	return s.update(ctx, ref, func(w *store.Wallet) {
		w.IsActive = true
	})
}

// Delete removes a wallet and its encrypted key permanently.
func (s *Service) Delete(ctx context.Context, ref string) (*Info, error) {
	w, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	err = s.store.DeleteWallet(ctx, w.ID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrWalletNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete wallet: %w", err)
	}
	return infoOf(w), nil
}

func (s *Service) update(ctx context.Context, ref string, mutate func(*store.Wallet)) (*Info, error) {
	w, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	mutate(w)
	err = s.store.UpdateWallet(ctx, w)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrWalletNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}
	return infoOf(w), nil
}

func (s *Service) resolve(ctx context.Context, ref string) (*store.Wallet, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", kerrors.ErrWalletNotFound)
	}

	w, err := s.store.FindWalletByID(ctx, ref)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	w, err = s.store.FindWalletByAddress(ctx, ref)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	all, err := s.store.ListWallets(ctx, true)
	if err != nil {
		return nil, err
	}
	var match *store.Wallet
	for _, candidate := range all {
		if candidate.Name != ref {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: name %q is ambiguous, use the id or address", kerrors.ErrWalletNotFound, ref)
		}
		match = candidate
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrWalletNotFound, ref)
	}
	return match, nil
}

func (s *Service) sessionKey(ctx context.Context, password []byte) (*secrets.Key, error) {
	if password != nil {
		return s.master.SessionKeyWithPassword(ctx, password)
	}
	return s.master.SessionKey(ctx)
}
