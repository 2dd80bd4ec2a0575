package heritage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/heritagehq/heritage"
	"github.com/stretchr/testify/assert"
)

func testUser(password string) *heritage.User {
	hash, _ := heritage.HashPassword(password)
	return &heritage.User{
		ID:           uuid.New(),
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: hash,
		Role:         heritage.RoleMember,
		Status:       heritage.UserStatusActive,
	}
}

func TestUserProviderVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful verification", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		user := testUser("password123")

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.NoError(t, err)
		assert.NotNil(t, identity)
		assert.Equal(t, user.ID.String(), identity.ID())
		assert.Equal(t, "testuser", identity.Username())
		assert.Equal(t, "test@example.com", identity.Email())
		assert.Equal(t, heritage.RoleMember, identity.Role())

		mockTracker.AssertExpectations(t)
	})

	t.Run("Invalid password", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		user := testUser("correct_password")

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackAttemptedLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "wrong_password")

		assert.Nil(t, identity)
		assert.Equal(t, heritage.ErrMismatchedHashAndPassword, err)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Unknown identifier collapses to the same error", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		mockTracker.On("GetByIdentifier", ctx, "nobody@example.com").
			Return(nil, heritage.ErrIdentityNotFound).Once()

		identity, err := provider.VerifyIdentity(ctx, "nobody@example.com", "password123")

		assert.Nil(t, identity)
		// A caller probing accounts sees the exact same failure for an
		// unknown address as for a wrong password.
		assert.Equal(t, heritage.ErrMismatchedHashAndPassword, err)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Repository record-not-found collapses too", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		mockTracker.On("GetByIdentifier", ctx, "gone@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		identity, err := provider.VerifyIdentity(ctx, "gone@example.com", "password123")

		assert.Nil(t, identity)
		assert.Equal(t, heritage.ErrMismatchedHashAndPassword, err)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Suspended account", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		user := testUser("password123")
		user.Status = heritage.UserStatusSuspended

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Nil(t, identity)
		assert.Equal(t, heritage.ErrInactiveUser, err)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Too many attempts inside cooldown", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		user := testUser("password123")
		attemptAt := time.Now().Add(-5 * time.Minute)
		user.LoginAttempts = heritage.MaxLoginAttempts + 1
		user.LoginAttemptAt = &attemptAt

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Nil(t, identity)
		assert.Equal(t, heritage.ErrTooManyLoginAttempts, err)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Cooldown expiry resets the counter", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		user := testUser("password123")
		attemptAt := time.Now().Add(-25 * time.Hour)
		user.LoginAttempts = heritage.MaxLoginAttempts + 3
		user.LoginAttemptAt = &attemptAt

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.NoError(t, err)
		assert.NotNil(t, identity)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Tracking a successful login is best effort", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		user := testUser("password123")

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackSuccessfulLogin", ctx, user).Return(errors.New("db hiccup")).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.NoError(t, err)
		assert.NotNil(t, identity)

		mockTracker.AssertExpectations(t)
	})
}

func TestUserProviderFindIdentityByIdentifier(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		user := testUser("password123")

		mockTracker.On("GetByIdentifier", ctx, "testuser").Return(user, nil).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, "testuser")

		assert.NoError(t, err)
		assert.Equal(t, user.Email, identity.Email())

		mockTracker.AssertExpectations(t)
	})

	t.Run("Not found propagates", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		mockTracker.On("GetByIdentifier", ctx, "ghost").
			Return(nil, heritage.ErrIdentityNotFound).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, "ghost")

		assert.Error(t, err)
		assert.Nil(t, identity)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Invalid role rejected by validator", func(t *testing.T) {
		mockTracker := new(MockUserTracker)
		provider := heritage.NewUserProvider(mockTracker)

		user := testUser("password123")
		user.Role = "superuser"

		mockTracker.On("GetByIdentifier", ctx, "testuser").Return(user, nil).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, "testuser")

		assert.Error(t, err)
		assert.Nil(t, identity)

		mockTracker.AssertExpectations(t)
	})
}
