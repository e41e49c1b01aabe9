package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethos-labs/ethos-auth/core"
	"github.com/ethos-labs/ethos-auth/internal/eth"
	"github.com/ethos-labs/ethos-auth/internal/logging"
	"github.com/ethos-labs/ethos-auth/ports"
)

// AuthService orchestrates the challenge/login protocol: fetch identity,
// build the canonical message, verify the signature, rotate the nonce,
// issue a session token.
type AuthService struct {
	store     ports.WalletStore
	tokenizer ports.SessionTokenizer
	events    ports.EventPublisher
	log       logging.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store ports.WalletStore,
	tokenizer ports.SessionTokenizer,
	events ports.EventPublisher,
	log logging.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		tokenizer: tokenizer,
		events:    events,
		log:       log,
	}
}

// GetOrCreateWallet returns the identity for an address, registering it on
// first contact. The returned record carries the current nonce, which the
// client must sign before calling Login.
func (s *AuthService) GetOrCreateWallet(ctx context.Context, address string) (*core.WalletIdentity, error) {
	normalized, err := eth.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	wallet, err := s.store.FindByAddress(ctx, normalized)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, core.ErrWalletNotFound) {
		return nil, err
	}

	wallet, err = s.store.Create(ctx, normalized)
	if errors.Is(err, core.ErrWalletExists) {
		// Another request registered the address first.
		return s.store.FindByAddress(ctx, normalized)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "wallet created", "address", normalized, "wallet_id", wallet.ID)

	if err := s.events.PublishWalletCreated(ctx, wallet.ID, wallet.Address); err != nil {
		s.log.Warn(ctx, "failed to publish wallet created event", "error", err)
	}

	return wallet, nil
}

// Login verifies a signature over the canonical message for the wallet's
// current nonce, rotates the nonce, and issues a session token. The nonce
// only changes on success: a failed verification leaves it intact so the
// legitimate owner can retry, and a successful one consumes it before the
// same signature could be replayed.
func (s *AuthService) Login(ctx context.Context, address, signature string) (string, *core.WalletIdentity, error) {
	normalized, err := eth.NormalizeAddress(address)
	if err != nil {
		return "", nil, err
	}

	// Login never registers an address; the client must have learned the
	// nonce through GetOrCreateWallet first.
	wallet, err := s.store.FindByAddress(ctx, normalized)
	if err != nil {
		return "", nil, err
	}

	message := core.BuildLoginMessage(normalized, wallet.Nonce)

	if err := eth.VerifyPersonalSign(message, signature, normalized); err != nil {
		s.log.Warn(ctx, "login signature rejected", "address", normalized)
		return "", nil, err
	}

	updated, err := s.store.RotateNonce(ctx, normalized, wallet.Nonce)
	if err != nil {
		if errors.Is(err, core.ErrNonceConflict) {
			// A concurrent login consumed this nonce first; the presented
			// proof is spent.
			s.log.Warn(ctx, "login lost nonce rotation race", "address", normalized)
			return "", nil, fmt.Errorf("%w: nonce already consumed", core.ErrInvalidSignature)
		}
		return "", nil, err
	}

	token, _, err := s.tokenizer.IssueSession(updated)
	if err != nil {
		return "", nil, err
	}

	s.log.Info(ctx, "login succeeded", "address", normalized, "wallet_id", updated.ID)

	if err := s.events.PublishLogin(ctx, updated.ID, updated.Address); err != nil {
		s.log.Warn(ctx, "failed to publish login event", "error", err)
	}

	return token, updated, nil
}

// Validate checks a presented session token and returns the session it
// encodes. The specific failure kind is logged; callers outside the trust
// boundary should collapse all failures to one unauthenticated outcome.
func (s *AuthService) Validate(ctx context.Context, token string) (*core.Session, error) {
	session, err := s.tokenizer.ValidateSession(token)
	if err != nil {
		s.log.Warn(ctx, "session token rejected", "reason", err)
		return nil, err
	}
	return session, nil
}
