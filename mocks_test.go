package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/interviewly/go-auth"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// testConfig implements auth.Config with sensible test defaults.
type testConfig struct {
	signingKey  string
	ttl         time.Duration
	extendedTTL time.Duration
	issuer      string
	audience    []string
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey:  "test-signing-key",
		ttl:         time.Hour,
		extendedTTL: 7 * 24 * time.Hour,
		issuer:      "test-issuer",
		audience:    []string{"test:audience"},
	}
}

func (c testConfig) GetSigningKey() string              { return c.signingKey }
func (c testConfig) GetTokenTTL() time.Duration         { return c.ttl }
func (c testConfig) GetExtendedTokenTTL() time.Duration { return c.extendedTTL }
func (c testConfig) GetIssuer() string                  { return c.issuer }
func (c testConfig) GetAudience() []string              { return c.audience }
func (c testConfig) GetContextKey() string              { return "user" }
func (c testConfig) GetAuthScheme() string              { return "Bearer" }
func (c testConfig) GetTokenLookup() string             { return "header:Authorization" }

// MockUserFinder implements auth.UserFinder
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserFinder) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUsers mocks the store methods the orchestration flow touches. The
// embedded repository interface covers the rest of auth.Users; anything
// unexpected panics loudly.
type MockUsers struct {
	mock.Mock
	repository.Repository[*auth.User]
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	args := m.Called(ctx, tx, email)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*auth.User, error) {
	args := m.Called(ctx, tx, username)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	args := m.Called(ctx, record)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	args := m.Called(ctx, tx, record)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// stubRepoManager wires a Users implementation into the manager surface.
// RunInTx invokes the callback directly; there is no real database behind it.
type stubRepoManager struct {
	users auth.Users
}

func (s stubRepoManager) Users() auth.Users { return s.users }
func (s stubRepoManager) Validate() error   { return nil }
func (s stubRepoManager) MustValidate()     {}

func (s stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if id, ok := args.Get(0).(auth.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if id, ok := args.Get(0).(auth.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingLogger captures rendered log lines for assertions.
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) record(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debug(format string, args ...any) { l.record(format, args...) }
func (l *recordingLogger) Info(format string, args ...any)  { l.record(format, args...) }
func (l *recordingLogger) Error(format string, args ...any) { l.record(format, args...) }
