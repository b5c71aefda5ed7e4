package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
)

// UserFinder is the store surface the provider needs to resolve identities.
// GetByID matches the repository signature so Users satisfies it directly.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
}

// UserProvider resolves identities against the user store.
type UserProvider struct {
	store  UserFinder
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserFinder) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user by email, compare the password against
// the stored hash, and return the identity. An unknown email and a wrong
// password both fail with ErrInvalidCredentials so callers cannot
// distinguish the two.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			u.logger.Debug("VerifyIdentity no user for identifier")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if IsMismatchedPasswordError(err) {
			u.logger.Debug("VerifyIdentity password mismatch for user %s", user.ID.String())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByIdentifier resolves a user id to an identity without
// checking credentials. The identity guard uses it to resolve token
// subjects.
func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByID(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}
