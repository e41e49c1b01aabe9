package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AudienceSession versions the claims structure. Bumping it invalidates
// every outstanding token, so it only changes when the claim set changes.
const AudienceSession = "ethos:session:v1"

// SessionClaims is the fixed claims structure for session tokens. Fields
// are explicit; arbitrary payloads are never embedded.
type SessionClaims struct {
	jwt.RegisteredClaims
	WalletID string `json:"wid"`
	Address  string `json:"addr"`
}
