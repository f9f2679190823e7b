package clerk

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, string(pemBytes)
}

func signSessionToken(t *testing.T, key *rsa.PrivateKey, claims *SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestSessionVerifier(t *testing.T) {
	key, publicPEM := newTestKeyPair(t)
	now := testClock.Now()

	verifier, err := NewSessionVerifier(publicPEM, testClock)
	require.NoError(t, err)

	validClaims := func() *SessionClaims {
		return &SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user_abc",
				IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			SessionID: "sess_123",
			OrgID:     "org_xyz",
			OrgRole:   "org:admin",
		}
	}

	t.Run("accepts a valid token", func(t *testing.T) {
		claims, err := verifier.Verify(signSessionToken(t, key, validClaims()))

		require.NoError(t, err)
		assert.Equal(t, "user_abc", claims.UserID())
		assert.Equal(t, "org_xyz", claims.OrgID)
		assert.Equal(t, "org:admin", claims.OrgRole)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := validClaims()
		expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

		_, err := verifier.Verify(signSessionToken(t, key, expired))
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("rejects a token without a subject", func(t *testing.T) {
		anonymous := validClaims()
		anonymous.Subject = ""

		_, err := verifier.Verify(signSessionToken(t, key, anonymous))
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		otherKey, _ := newTestKeyPair(t)

		_, err := verifier.Verify(signSessionToken(t, otherKey, validClaims()))
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := verifier.Verify("not-a-jwt")
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}
