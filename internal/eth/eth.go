// Package eth wraps the go-ethereum primitives used for wallet
// authentication: EIP-55 address normalization and EIP-191 personal_sign
// signature recovery.
package eth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethos-labs/ethos-auth/core"
)

// NormalizeAddress validates s as a hex Ethereum address and returns its
// EIP-55 checksummed rendering. Two casings of the same address normalize
// to the same string.
func NormalizeAddress(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidAddress, s)
	}
	return common.HexToAddress(s).Hex(), nil
}

// RecoverPersonalSigner recovers the address that produced sigHex over
// message using the EIP-191 personal_sign scheme:
// keccak256("\x19Ethereum Signed Message:\n" + len(msg) + msg).
func RecoverPersonalSigner(message, sigHex string) (common.Address, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: decode signature: %v", core.ErrInvalidSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: signature must be %d bytes, got %d",
			core.ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}

	// Wallets emit V as 27/28; crypto.SigToPub expects 0/1.
	recovery := make([]byte, crypto.SignatureLength)
	copy(recovery, sig)
	if recovery[crypto.RecoveryIDOffset] >= 27 {
		recovery[crypto.RecoveryIDOffset] -= 27
	}
	if recovery[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, fmt.Errorf("%w: invalid recovery id", core.ErrInvalidSignature)
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), recovery)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyPersonalSign checks that sigHex is a valid personal_sign signature
// over message produced by claimedAddress. Comparison is case-insensitive
// through checksum normalization. Malformed input is an error, never a
// panic.
func VerifyPersonalSign(message, sigHex, claimedAddress string) error {
	claimed, err := NormalizeAddress(claimedAddress)
	if err != nil {
		return err
	}

	recovered, err := RecoverPersonalSigner(message, sigHex)
	if err != nil {
		return err
	}

	if recovered.Hex() != claimed {
		return fmt.Errorf("%w: recovered signer %s does not match %s",
			core.ErrInvalidSignature, recovered.Hex(), claimed)
	}

	return nil
}
