package authentication

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Context keys set by JWTAuthMiddleware for downstream handlers.
const (
	CtxUserID   = "userID"
	CtxRole     = "role"
	CtxTokenID  = "tokenID"
	CtxTokenExp = "tokenExp"
)

// JWTAuthMiddleware authenticates the Bearer token, rejects revoked tokens
// via the redis denylist, and stores the caller's identity in the context.
// A nil redis client disables the revocation check.
func JWTAuthMiddleware(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing the authorization header"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		claims, err := ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.Type != TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}
		if rdb != nil && IsTokenRevoked(c.Request.Context(), rdb, claims.ID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has been revoked"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxTokenID, claims.ID)
		c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		c.Next()
	}
}
