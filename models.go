package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. The password hash never serializes to JSON and
// must never be logged.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PublicUser is the representation safe to return to clients.
type PublicUser struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Public strips everything a client should not see.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
