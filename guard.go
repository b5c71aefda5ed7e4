package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
)

// Authorize is the transport-free core of the identity guard. It validates
// a raw token and resolves its subject against the store, returning the
// user and claims or a typed rejection. The middleware composes the same
// steps around fiber; tests can exercise the decision logic here directly.
func Authorize(ctx context.Context, token string, validator TokenValidator, users UserFinder) (*User, AuthClaims, error) {
	if token == "" {
		return nil, nil, ErrTokenMissing
	}

	claims, err := validator.Validate(token)
	if err != nil {
		return nil, nil, err
	}

	user, err := ResolveSubject(ctx, users, claims.UserID())
	if err != nil {
		return nil, nil, err
	}

	return user, claims, nil
}

// ResolveSubject maps a verified token subject to a stored user. No request
// state, no caching, just (subject, store) -> user or a typed rejection.
func ResolveSubject(ctx context.Context, users UserFinder, userID string) (*User, error) {
	if userID == "" {
		return nil, ErrIdentityNotFound
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return user, nil
}
