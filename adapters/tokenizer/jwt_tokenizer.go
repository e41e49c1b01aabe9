package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ethos-labs/ethos-auth/core"
	"github.com/ethos-labs/ethos-auth/ports"
)

// JWTTokenizer implements the SessionTokenizer interface with HS256 over a
// process-wide shared secret. The secret is set once at construction and
// never mutated.
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTTokenizer creates a tokenizer that issues tokens valid for ttl.
func NewJWTTokenizer(secret []byte, ttl time.Duration) ports.SessionTokenizer {
	return &JWTTokenizer{secret: secret, ttl: ttl}
}

// IssueSession mints a signed session token for an authenticated identity.
func (j *JWTTokenizer) IssueSession(identity *core.WalletIdentity) (string, *core.Session, error) {
	now := time.Now()
	expiresAt := now.Add(j.ttl)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Address,
			Audience:  jwt.ClaimStrings{AudienceSession},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		WalletID: identity.ID,
		Address:  identity.Address,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	session := &core.Session{
		WalletID:  identity.ID,
		Address:   identity.Address,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}

	return signed, session, nil
}

// ValidateSession decodes a token and checks its signature, structure,
// audience and expiry. Expiry is always enforced; there is no skip knob.
func (j *JWTTokenizer) ValidateSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithAudience(AudienceSession),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, core.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, core.ErrTokenSignatureInvalid
		default:
			return nil, core.ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, core.ErrTokenMalformed
	}
	if claims.WalletID == "" || claims.Address == "" || claims.ExpiresAt == nil {
		return nil, core.ErrTokenMalformed
	}

	session := &core.Session{
		WalletID:  claims.WalletID,
		Address:   claims.Address,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}

	return session, nil
}
