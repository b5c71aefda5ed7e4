package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured JWT claims
type AuthClaims interface {
	Subject() string
	UserID() string
	Expires() time.Time
	IssuedAt() time.Time
}

// TokenUser is the nested user claim carried in the token payload. Existing
// clients read the user id from `user.id`, so the shape is part of the wire
// contract.
type TokenUser struct {
	ID string `json:"id"`
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID  string     `json:"uid,omitempty"`
	User *TokenUser `json:"user,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID, preferring the nested user claim.
func (c *JWTClaims) UserID() string {
	if c.User != nil && c.User.ID != "" {
		return c.User.ID
	}
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
