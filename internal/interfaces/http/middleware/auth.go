package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greenmission/backend/internal/infrastructure/clerk"
	"github.com/greenmission/backend/internal/interfaces/http/dto"
)

const (
	contextKeyUserID  = "user_id"
	contextKeyOrgID   = "org_id"
	contextKeyOrgRole = "org_role"
)

// RequireAuth verifies the Clerk session token on the Authorization header
// and stores the caller's identity in the request context.
func RequireAuth(verifier *clerk.SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing or malformed Authorization header"))
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid or expired session token"))
			return
		}

		c.Set(contextKeyUserID, claims.UserID())
		if claims.OrgID != "" {
			c.Set(contextKeyOrgID, claims.OrgID)
		}
		if claims.OrgRole != "" {
			c.Set(contextKeyOrgRole, claims.OrgRole)
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// GetUserID returns the authenticated user ID set by RequireAuth.
func GetUserID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

// GetOrgID returns the active organization ID, if the session carries one.
func GetOrgID(c *gin.Context) string {
	return c.GetString(contextKeyOrgID)
}

// GetOrgRole returns the caller's role in the active organization.
func GetOrgRole(c *gin.Context) string {
	return c.GetString(contextKeyOrgRole)
}
