package auth

import (
	"strings"

	"codeberg.org/finpal/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// validates bearer tokens and adds user info to context
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.Unauthorized(c, "authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.Unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := ValidateJWT(secret, parts[1])
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			return
		}

		if !errors.IsValidUUID(claims.UserID()) {
			errors.Unauthorized(c, "invalid user id in token")
			return
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextUserEmail, claims.Email)

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserID)
	return userID, userID != ""
}
