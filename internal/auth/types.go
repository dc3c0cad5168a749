package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// context keys set by AuthMiddleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// represents the claims of an access token issued by the auth provider.
// the user id travels in the standard subject claim.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// returns the authenticated user's id
func (c *Claims) UserID() string {
	return c.Subject
}
