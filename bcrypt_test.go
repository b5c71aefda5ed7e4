package auth_test

import (
	"testing"

	"github.com/interviewly/go-auth"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings!
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			err = auth.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestHashPasswordSalted(t *testing.T) {
	hash1, err := auth.HashPassword("samePassword")
	assert.NoError(t, err)

	hash2, err := auth.HashPassword("samePassword")
	assert.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)

	assert.NoError(t, auth.ComparePasswordAndHash("samePassword", hash1))
	assert.NoError(t, auth.ComparePasswordAndHash("samePassword", hash2))
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := auth.HashPassword(password)
	assert.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
			wantErr:  false,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Invalid hash",
			password: password,
			hash:     "invalidhash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.hash == hash {
					assert.Equal(t, auth.ErrMismatchedHashAndPassword, err)
					assert.True(t, auth.IsMismatchedPasswordError(err))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetBcryptCost(t *testing.T) {
	original := auth.BcryptCost()
	defer auth.SetBcryptCost(original)

	assert.Error(t, auth.SetBcryptCost(bcrypt.MinCost-1))
	assert.Error(t, auth.SetBcryptCost(bcrypt.MaxCost+1))

	assert.NoError(t, auth.SetBcryptCost(bcrypt.MinCost))
	assert.Equal(t, bcrypt.MinCost, auth.BcryptCost())

	hash, err := auth.HashPassword("cheap-cost-password")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
