package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup = "header:" + fiber.HeaderAuthorization

	// ErrJWTMissingOrMalformed is returned when no token can be extracted
	// from the request.
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the auth package.
type AuthClaims interface {
	Subject() string
	UserID() string
}

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the auth package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// ValidationListener is invoked after a token has been validated but before
// the request proceeds. A returned error rejects the request through the
// configured ErrorHandler; use listeners to resolve the token subject or to
// perform bookkeeping.
type ValidationListener func(c *fiber.Ctx, claims AuthClaims) error

type Config struct {
	// Filter defines a function to skip the middleware.
	Filter func(*fiber.Ctx) bool

	// ErrorHandler receives every rejection.
	ErrorHandler fiber.ErrorHandler

	// TokenValidator is required for token validation.
	TokenValidator TokenValidator

	// ContextKey is the fiber locals key for validated claims (default "user").
	ContextKey string

	// TokenLookup is a string in the form "<source>:<name>" used to extract
	// the token from the request (default "header:Authorization").
	TokenLookup string

	// AuthScheme is stripped from the header value (default "Bearer").
	AuthScheme string

	// ValidationListeners run after validation succeeds, in order.
	ValidationListeners []ValidationListener

	// ContextEnricher propagates claims to the standard Go context. If
	// provided, it is called after successful token validation.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context
}

// New returns the identity guard middleware: extract a presented token,
// validate it, run listeners, and expose claims for the rest of the request.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, cfg)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		for _, listener := range cfg.ValidationListeners {
			if listener == nil {
				continue
			}
			if err := listener(c, claims); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return c.Next()
	}
}

// GetDefaultConfig fills in the zero values of an optional config.
func GetDefaultConfig(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("jwtware: TokenValidator is required")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

// ExtractRawToken pulls the opaque token string from the request using the
// configured lookup.
func ExtractRawToken(c *fiber.Ctx, cfg Config) (string, error) {
	source, name, ok := strings.Cut(cfg.TokenLookup, ":")
	if !ok {
		source, name = "header", cfg.TokenLookup
	}

	var raw string
	switch source {
	case "query":
		raw = c.Query(name)
	case "cookie":
		raw = c.Cookies(name)
	default:
		raw = c.Get(name)
		if cfg.AuthScheme != "" {
			prefix := cfg.AuthScheme + " "
			if len(raw) > len(prefix) && strings.EqualFold(raw[:len(prefix)], prefix) {
				raw = raw[len(prefix):]
			} else {
				raw = ""
			}
		}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrJWTMissingOrMalformed
	}

	return raw, nil
}

func defaultErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrJWTMissingOrMalformed) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   ErrJWTMissingOrMalformed.Error(),
		})
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "invalid or expired JWT",
	})
}
