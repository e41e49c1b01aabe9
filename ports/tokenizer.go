package ports

import "github.com/ethos-labs/ethos-auth/core"

// SessionTokenizer converts between authenticated identities and signed
// session tokens. Implementations hold the signing secret, loaded once at
// startup, and no other mutable state.
type SessionTokenizer interface {
	// IssueSession mints a signed session token for an authenticated
	// identity and returns it with the session it encodes.
	IssueSession(identity *core.WalletIdentity) (string, *core.Session, error)

	// ValidateSession decodes and checks a presented token. Signature,
	// structure and expiry are all enforced; failures are
	// core.ErrTokenExpired, core.ErrTokenSignatureInvalid or
	// core.ErrTokenMalformed.
	ValidateSession(token string) (*core.Session, error)
}
