package ports

import (
	"context"

	"github.com/ethos-labs/ethos-auth/core"
)

// WalletStore owns WalletIdentity persistence. Implementations must
// serialize nonce rotations per address at the storage layer (row-level
// locking or compare-and-set), never with in-process locks that a second
// service instance could bypass.
type WalletStore interface {
	// FindByAddress returns the identity for a checksummed address, or
	// core.ErrWalletNotFound.
	FindByAddress(ctx context.Context, address string) (*core.WalletIdentity, error)

	// Create inserts a new identity with a freshly generated nonce.
	// Returns core.ErrWalletExists when the address is already registered.
	Create(ctx context.Context, address string) (*core.WalletIdentity, error)

	// GetOrCreate fetches the identity for an address, creating it on first
	// contact. When a concurrent request wins the create race, the existing
	// record is re-fetched and returned; the caller never sees a duplicate
	// error.
	GetOrCreate(ctx context.Context, address string) (*core.WalletIdentity, error)

	// RotateNonce atomically replaces the nonce, compare-and-set keyed on
	// the nonce value the caller observed. Exactly one concurrent rotation
	// against a given nonce wins; losers get core.ErrNonceConflict.
	RotateNonce(ctx context.Context, address, currentNonce string) (*core.WalletIdentity, error)
}
