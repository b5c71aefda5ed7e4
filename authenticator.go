package auth

import (
	"context"
	"reflect"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RegisterUserMessage carries a validated registration request into the
// orchestration flow.
type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type Auther struct {
	provider     IdentityProvider
	repo         RepositoryManager
	logger       Logger
	tokenService TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, cfg Config) (*Auther, error) {
	tokenService, err := NewTokenService(cfg, defLogger{})
	if err != nil {
		return nil, err
	}

	return &Auther{
		repo:         repo,
		provider:     NewUserProvider(repo.Users()),
		logger:       defLogger{},
		tokenService: tokenService,
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
		if ts, ok := s.tokenService.(*TokenServiceImpl); ok {
			ts.WithLogger(logger)
		}
	}
	return s
}

// WithIdentityProvider sets a custom IdentityProvider for the Auther.
func (s *Auther) WithIdentityProvider(provider IdentityProvider) *Auther {
	if provider != nil {
		s.provider = provider
	}
	return s
}

// WithTokenService sets a custom token service.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates a user and mints a session token. The duplicate checks
// and the insert run inside one transaction; the schema's unique indexes
// close the window between check and insert, and a constraint violation from
// a concurrent registration maps to the same conflict error.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (string, *User, error) {
	user := &User{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		users := s.repo.Users()

		if _, err := users.GetByEmailTx(ctx, tx, msg.Email); err == nil {
			return ErrEmailTaken
		} else if !repository.IsRecordNotFound(err) {
			return errors.Wrap(err, errors.CategoryInternal, "email lookup failed")
		}

		if _, err := users.GetByUsernameTx(ctx, tx, msg.Username); err == nil {
			return ErrUsernameTaken
		} else if !repository.IsRecordNotFound(err) {
			return errors.Wrap(err, errors.CategoryInternal, "username lookup failed")
		}

		hash, err := HashPassword(msg.Password)
		if err != nil {
			var richErr *errors.Error
			if errors.As(err, &richErr) {
				return errors.Wrap(richErr, errors.CategoryValidation, "invalid password provided")
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
		}

		user.Username = msg.Username
		user.Email = msg.Email
		user.PasswordHash = hash

		if user, err = users.CreateTx(ctx, tx, user); err != nil {
			if IsUniqueViolation(err) {
				return conflictFromUniqueViolation(err)
			}
			return errors.Wrap(err, errors.CategoryInternal, "could not create user")
		}

		return nil
	})

	if err != nil {
		s.logger.Error("Register user error: %v", err)
		return "", nil, err
	}

	token, err := s.tokenService.Generate(NewIdentityFromUser(user))
	if err != nil {
		s.logger.Error("Register token generation error: %v", err)
		return "", nil, err
	}

	return token, user, nil
}

// Login verifies the credential pair and mints a session token.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, *User, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Debug("Login verify identity error: %v", err)
		return "", nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", nil, ErrIdentityNotFound
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error: %v", err)
		return "", nil, err
	}

	return token, identityUser(identity), nil
}

func identityUser(identity Identity) *User {
	if uc, ok := identity.(userCapableIdentity); ok {
		return uc.User()
	}
	return nil
}

var _ Authenticator = (*Auther)(nil)
