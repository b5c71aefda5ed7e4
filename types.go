package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds methods to deal with credential issuance
type Authenticator interface {
	Register(ctx context.Context, msg RegisterUserMessage) (string, *User, error)
	Login(ctx context.Context, identifier, password string) (string, *User, error)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenTTL() time.Duration
	GetExtendedTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetAuthScheme() string
	GetTokenLookup() string
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
