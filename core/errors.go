package core

import "errors"

var (
	// ErrInvalidAddress is returned when the input is not a valid Ethereum address
	ErrInvalidAddress = errors.New("invalid ethereum address")

	// ErrWalletNotFound is returned when no identity exists for an address
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrWalletExists is returned by Create when the address already has an identity
	ErrWalletExists = errors.New("wallet already exists")

	// ErrNonceConflict is returned when a nonce rotation loses a compare-and-set race
	ErrNonceConflict = errors.New("nonce already rotated")

	// ErrInvalidSignature is returned when signature recovery fails or the
	// recovered signer does not match the claimed address
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrStoreUnavailable is returned when the persistence collaborator fails
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrTokenExpired is returned when a session token has expired
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenMalformed is returned when a session token cannot be parsed
	ErrTokenMalformed = errors.New("malformed token")

	// ErrTokenSignatureInvalid is returned when a session token fails signature verification
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
)
