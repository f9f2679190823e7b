package clerk

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/greenmission/backend/internal/domain/shared"
)

// SessionClaims are the claims carried by a Clerk session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	// SessionID identifies the Clerk session
	SessionID string `json:"sid,omitempty"`
	// OrgID is the active organization, when one is selected
	OrgID string `json:"org_id,omitempty"`
	// OrgRole is the user's role in the active organization
	OrgRole string `json:"org_role,omitempty"`
}

// UserID returns the authenticated Clerk user ID.
func (c *SessionClaims) UserID() string {
	return c.Subject
}

// SessionVerifier validates Clerk session tokens offline against the
// instance's RS256 public key.
type SessionVerifier struct {
	publicKey *rsa.PublicKey
	clock     shared.Clock
}

// NewSessionVerifier creates a verifier from the instance's PEM-encoded
// public key (Clerk dashboard, "JWT public key").
func NewSessionVerifier(publicKeyPEM string, clock shared.Clock) (*SessionVerifier, error) {
	if publicKeyPEM == "" {
		return nil, fmt.Errorf("clerk: JWT public key is required")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("clerk: invalid JWT public key: %w", err)
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &SessionVerifier{publicKey: key, clock: clock}, nil
}

// Verify parses and validates a session token, returning its claims.
func (v *SessionVerifier) Verify(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			return v.publicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, shared.ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, shared.ErrUnauthorized
	}
	return claims, nil
}
