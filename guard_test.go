package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/interviewly/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	ctx := context.Background()

	svc, err := auth.NewTokenService(newTestConfig(), nil)
	require.NoError(t, err)

	t.Run("Valid token for a known subject", func(t *testing.T) {
		finder := new(MockUserFinder)

		identity := newTestIdentity()
		token, err := svc.Generate(identity)
		require.NoError(t, err)

		stored := &auth.User{Username: identity.username}
		finder.On("GetByID", ctx, identity.id).Return(stored, nil).Once()

		user, claims, err := auth.Authorize(ctx, token, svc, finder)

		require.NoError(t, err)
		assert.Equal(t, stored, user)
		require.NotNil(t, claims)
		assert.Equal(t, identity.id, claims.UserID())

		finder.AssertExpectations(t)
	})

	t.Run("Empty token", func(t *testing.T) {
		finder := new(MockUserFinder)

		user, claims, err := auth.Authorize(ctx, "", svc, finder)

		assert.ErrorIs(t, err, auth.ErrTokenMissing)
		assert.Nil(t, user)
		assert.Nil(t, claims)
	})

	t.Run("Malformed token never reaches the store", func(t *testing.T) {
		finder := new(MockUserFinder)

		user, claims, err := auth.Authorize(ctx, "not.a.token", svc, finder)

		assert.True(t, auth.IsMalformedError(err))
		assert.Nil(t, user)
		assert.Nil(t, claims)

		finder.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Unknown subject", func(t *testing.T) {
		finder := new(MockUserFinder)

		identity := newTestIdentity()
		token, err := svc.Generate(identity)
		require.NoError(t, err)

		finder.On("GetByID", ctx, identity.id).
			Return(nil, repository.NewRecordNotFound()).Once()

		user, claims, err := auth.Authorize(ctx, token, svc, finder)

		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
		assert.Nil(t, user)
		assert.Nil(t, claims)

		finder.AssertExpectations(t)
	})
}

func TestResolveSubject(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolves a known subject", func(t *testing.T) {
		finder := new(MockUserFinder)

		userID := uuid.New()
		stored := &auth.User{ID: userID, Username: "testuser"}
		finder.On("GetByID", ctx, userID.String()).Return(stored, nil).Once()

		user, err := auth.ResolveSubject(ctx, finder, userID.String())

		require.NoError(t, err)
		assert.Equal(t, stored, user)

		finder.AssertExpectations(t)
	})

	t.Run("Empty subject", func(t *testing.T) {
		finder := new(MockUserFinder)

		user, err := auth.ResolveSubject(ctx, finder, "")

		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
		assert.Nil(t, user)

		finder.AssertNotCalled(t, "GetByID", ctx, "")
	})

	t.Run("Subject deleted since token was minted", func(t *testing.T) {
		finder := new(MockUserFinder)

		finder.On("GetByID", ctx, "gone-id").
			Return(nil, repository.NewRecordNotFound()).Once()

		user, err := auth.ResolveSubject(ctx, finder, "gone-id")

		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
		assert.Nil(t, user)

		finder.AssertExpectations(t)
	})

	t.Run("Store failure is not an identity rejection", func(t *testing.T) {
		finder := new(MockUserFinder)

		boom := errors.New("connection refused")
		finder.On("GetByID", ctx, "some-id").Return(nil, boom).Once()

		user, err := auth.ResolveSubject(ctx, finder, "some-id")

		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, auth.ErrIdentityNotFound)
		assert.Nil(t, user)

		finder.AssertExpectations(t)
	})
}
