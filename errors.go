package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeValidationFailed   = "validation_failed"
	TextCodeEmailTaken         = "email_taken"
	TextCodeUsernameTaken      = "username_taken"
	TextCodeInvalidCredentials = "invalid_credentials"
	TextCodeTokenMissing       = "missing_token"
	TextCodeTokenExpired       = "token_expired"
	TextCodeTokenMalformed     = "token_malformed"
	TextCodeUnknownSubject     = "unknown_subject"
)

// ErrIdentityNotFound is returned when a verified token resolves to a
// subject that no longer exists in the store.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithTextCode(TextCodeUnknownSubject).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
// The message is deliberately generic to prevent account enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeBadRequest)

// ErrUsernameTaken is returned when registering a username that already exists.
var ErrUsernameTaken = errors.New("username already registered", errors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken).
	WithCode(errors.CodeBadRequest)

// ErrTokenMissing is returned when a protected request carries no token.
var ErrTokenMissing = errors.New("missing or malformed JWT", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when the token signature verifies but the
// expiry has passed.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers bad structure, tampering, and signature mismatch.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the typed outcome of a failed password
// comparison.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	var richErr *errors.Error
	return errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired
}

// IsMalformedError will check for tokens rejected before expiry checks:
// bad structure, tampering, signature mismatch, or a missing token.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) || errors.Is(err, ErrTokenMissing) {
		return true
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeTokenMalformed ||
		richErr.TextCode == TextCodeTokenMissing
}

// IsMismatchedPasswordError checks for the typed bcrypt mismatch outcome.
func IsMismatchedPasswordError(err error) bool {
	return errors.Is(err, ErrMismatchedHashAndPassword)
}

// IsUniqueViolation reports whether err comes from a unique constraint.
// SQLite and Postgres drivers only expose this through the driver message,
// so the chain is walked down to it. Wrappers may render a sanitized text.
func IsUniqueViolation(err error) bool {
	_, ok := uniqueViolationDetail(err)
	return ok
}

func uniqueViolationDetail(err error) (string, bool) {
	for err != nil {
		msg := err.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value") {
			return msg, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return "", false
		}
		err = unwrapper.Unwrap()
	}
	return "", false
}

// conflictFromUniqueViolation maps a constraint violation raised by a
// concurrent insert to the same conflict error the pre-insert duplicate
// check produces.
func conflictFromUniqueViolation(err error) error {
	msg, ok := uniqueViolationDetail(err)
	if !ok {
		msg = err.Error()
	}
	if strings.Contains(msg, "username") {
		return ErrUsernameTaken
	}
	if strings.Contains(msg, "email") {
		return ErrEmailTaken
	}
	return errors.Wrap(err, errors.CategoryConflict, "could not create user").
		WithCode(errors.CodeConflict)
}
