package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the durable mapping from identity fields to user records. ID
// lookups come from the embedded repository; email and username lookups are
// the credential paths this package adds.
type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error)

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.getByColumnTx(ctx, tx, "email", normalizeIdentifier(email))
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *users) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	return a.getByColumnTx(ctx, tx, "username", normalizeIdentifier(username))
}

func (a *users) getByColumnTx(ctx context.Context, tx bun.IDB, column, value string) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = normalizeIdentifier(record.Email)
	record.Username = normalizeIdentifier(record.Username)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}
}

// normalizeIdentifier trims surrounding whitespace and lowercases so the
// unique indexes compare the same value the lookups do.
func normalizeIdentifier(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
