package core

import (
	"time"

	"github.com/google/uuid"
)

// WalletIdentity is the persistent record for a single wallet address.
// There is exactly one identity per checksummed address. The nonce is
// single-use: it is replaced by the store's rotate operation after every
// successful login and must never be mutated any other way.
type WalletIdentity struct {
	ID        string    // Unique identifier, assigned at creation
	Address   string    // EIP-55 checksummed Ethereum address
	Nonce     string    // Single-use random value the client signs
	CreatedAt time.Time // When the identity was created
	UpdatedAt time.Time // Touched on every nonce rotation
}

// Session represents an authenticated session derived from a validated
// token. It is never persisted.
type Session struct {
	WalletID  string    // ID of the authenticated WalletIdentity
	Address   string    // Checksummed address of the wallet
	IssuedAt  time.Time // When the session token was issued
	ExpiresAt time.Time // When the session token expires
}

// NewNonce returns a fresh 128-bit random nonce rendered as a string.
func NewNonce() string {
	return uuid.New().String()
}

// NewID returns a fresh identifier for a WalletIdentity.
func NewID() string {
	return uuid.New().String()
}
