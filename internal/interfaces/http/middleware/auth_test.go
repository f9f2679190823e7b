package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/greenmission/backend/internal/infrastructure/clerk"
)

var authTestClock = shared.FixedClock{T: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}

func newSessionKeypair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, string(pemBytes)
}

func signSessionToken(t *testing.T, key *rsa.PrivateKey, claims *clerk.SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func newAuthRouter(verifier *clerk.SessionVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireAuth(verifier))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetUserID(c),
			"org_id":  GetOrgID(c),
			"role":    GetOrgRole(c),
		})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	key, publicPEM := newSessionKeypair(t)
	verifier, err := clerk.NewSessionVerifier(publicPEM, authTestClock)
	require.NoError(t, err)
	r := newAuthRouter(verifier)

	t.Run("accepts a valid session token", func(t *testing.T) {
		token := signSessionToken(t, key, &clerk.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user_2abc",
				ExpiresAt: jwt.NewNumericDate(authTestClock.T.Add(time.Hour)),
			},
			OrgID:   "org_9xyz",
			OrgRole: "admin",
		})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user_2abc")
		assert.Contains(t, w.Body.String(), "org_9xyz")
		assert.Contains(t, w.Body.String(), "admin")
	})

	t.Run("rejects a missing Authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_UNAUTHORIZED")
	})

	t.Run("rejects a non-bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token := signSessionToken(t, key, &clerk.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user_2abc",
				ExpiresAt: jwt.NewNumericDate(authTestClock.T.Add(-time.Hour)),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		otherKey, _ := newSessionKeypair(t)
		token := signSessionToken(t, otherKey, &clerk.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user_2abc",
				ExpiresAt: jwt.NewNumericDate(authTestClock.T.Add(time.Hour)),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
