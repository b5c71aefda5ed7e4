package auth_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/interviewly/go-auth"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaimsUserID(t *testing.T) {
	tests := []struct {
		name   string
		claims *auth.JWTClaims
		want   string
	}{
		{
			name: "Prefers nested user id",
			claims: &auth.JWTClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-id"},
				UID:              "uid-id",
				User:             &auth.TokenUser{ID: "user-id"},
			},
			want: "user-id",
		},
		{
			name: "Falls back to uid",
			claims: &auth.JWTClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-id"},
				UID:              "uid-id",
			},
			want: "uid-id",
		},
		{
			name: "Falls back to subject",
			claims: &auth.JWTClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-id"},
			},
			want: "sub-id",
		},
		{
			name: "Empty nested user is skipped",
			claims: &auth.JWTClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-id"},
				User:             &auth.TokenUser{},
			},
			want: "sub-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.UserID())
		})
	}
}

func TestJWTClaimsTimes(t *testing.T) {
	empty := &auth.JWTClaims{}
	assert.True(t, empty.Expires().IsZero())
	assert.True(t, empty.IssuedAt().IsZero())
}
