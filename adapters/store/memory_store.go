package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethos-labs/ethos-auth/core"
	"github.com/ethos-labs/ethos-auth/ports"
)

// MemoryStore is an in-memory implementation of the WalletStore interface,
// primarily intended for testing. A single mutex serializes rotations,
// which satisfies the compare-and-set contract for one process only.
type MemoryStore struct {
	wallets map[string]core.WalletIdentity
	mu      sync.Mutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() ports.WalletStore {
	return &MemoryStore{
		wallets: make(map[string]core.WalletIdentity),
	}
}

// FindByAddress returns the identity for an address.
func (s *MemoryStore) FindByAddress(ctx context.Context, address string) (*core.WalletIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[address]
	if !ok {
		return nil, core.ErrWalletNotFound
	}
	return &w, nil
}

// Create inserts a new identity with a fresh nonce.
func (s *MemoryStore) Create(ctx context.Context, address string) (*core.WalletIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wallets[address]; ok {
		return nil, core.ErrWalletExists
	}

	now := time.Now().UTC()
	w := core.WalletIdentity{
		ID:        core.NewID(),
		Address:   address,
		Nonce:     core.NewNonce(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.wallets[address] = w

	return &w, nil
}

// GetOrCreate fetches the identity for an address, creating it on first
// contact.
func (s *MemoryStore) GetOrCreate(ctx context.Context, address string) (*core.WalletIdentity, error) {
	w, err := s.FindByAddress(ctx, address)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, core.ErrWalletNotFound) {
		return nil, err
	}

	w, err = s.Create(ctx, address)
	if errors.Is(err, core.ErrWalletExists) {
		return s.FindByAddress(ctx, address)
	}
	return w, err
}

// RotateNonce replaces the nonce, compare-and-set keyed on currentNonce.
func (s *MemoryStore) RotateNonce(ctx context.Context, address, currentNonce string) (*core.WalletIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[address]
	if !ok {
		return nil, core.ErrWalletNotFound
	}
	if w.Nonce != currentNonce {
		return nil, core.ErrNonceConflict
	}

	w.Nonce = core.NewNonce()
	w.UpdatedAt = time.Now().UTC()
	s.wallets[address] = w

	return &w, nil
}
