package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/interviewly/go-auth/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// ProtectedRoute builds the request-time identity guard: extract token,
// validate it, resolve the subject against the store, and attach the
// resolved user to the request context for this request only.
func ProtectedRoute(users UserFinder, validator TokenValidator, cfg Config) fiber.Handler {
	jcfg := jwtware.Config{
		ErrorHandler:   GuardErrorHandler(),
		TokenValidator: AsJWTValidator(validator),
		ValidationListeners: []jwtware.ValidationListener{
			UserResolutionListener(users),
		},
		ContextEnricher: ContextEnricherAdapter,
	}

	if cfg != nil {
		jcfg.ContextKey = cfg.GetContextKey()
		jcfg.AuthScheme = cfg.GetAuthScheme()
		jcfg.TokenLookup = cfg.GetTokenLookup()
	}

	return jwtware.New(jcfg)
}

// UserResolutionListener rejects tokens whose subject no longer exists and
// stores the resolved user in the request context.
func UserResolutionListener(users UserFinder) jwtware.ValidationListener {
	return func(c *fiber.Ctx, claims jwtware.AuthClaims) error {
		user, err := ResolveSubject(c.UserContext(), users, claims.UserID())
		if err != nil {
			return err
		}

		c.SetUserContext(WithContext(c.UserContext(), user))
		return nil
	}
}

// ContextEnricherAdapter adapts jwtware.AuthClaims to auth.AuthClaims and
// stores claims in the standard context for downstream usage.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}

	return WithClaimsContext(c, authClaims)
}

// AsJWTValidator adapts an auth.TokenValidator into the jwtware mirror interface.
func AsJWTValidator(v TokenValidator) jwtware.TokenValidator {
	return jwtValidatorAdapter{v: v}
}

type jwtValidatorAdapter struct {
	v TokenValidator
}

func (a jwtValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.v.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	jc, ok := claims.(jwtware.AuthClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	return jc, nil
}

// GuardErrorHandler renders guard rejections with the standard envelope.
// Categories never leak verification detail beyond what the client needs to
// re-authenticate.
func GuardErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var message string

		switch {
		case errors.Is(err, jwtware.ErrJWTMissingOrMalformed), errors.Is(err, ErrTokenMissing):
			message = ErrTokenMissing.Message
		case IsTokenExpiredError(err):
			message = ErrTokenExpired.Message
		case IsMalformedError(err):
			message = ErrTokenMalformed.Message
		case errors.Is(err, ErrIdentityNotFound):
			message = ErrIdentityNotFound.Message
		default:
			// store or infrastructure failure, detail stays server-side
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "server error",
			})
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
