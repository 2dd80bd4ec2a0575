package heritage_test

import (
	"errors"
	"testing"

	"github.com/heritagehq/heritage"
	"github.com/stretchr/testify/assert"
)

func TestTokenFailuresShareClientMessage(t *testing.T) {
	// Distinct internal reasons, one indistinguishable client response.
	sentinels := []error{
		heritage.ErrTokenNotFound,
		heritage.ErrTokenRevoked,
		heritage.ErrTokenExpired,
		heritage.ErrSessionTooOld,
	}

	for _, err := range sentinels {
		assert.Equal(t, heritage.ErrTokenNotFound.Error(), err.Error())
		assert.True(t, heritage.IsAuthError(err))
	}
}

func TestTokenFailuresRemainDistinctInternally(t *testing.T) {
	assert.False(t, errors.Is(heritage.ErrTokenRevoked, heritage.ErrTokenExpired))
	assert.False(t, errors.Is(heritage.ErrTokenExpired, heritage.ErrSessionTooOld))
	assert.False(t, errors.Is(heritage.ErrSessionTooOld, heritage.ErrTokenNotFound))
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"credential mismatch", heritage.ErrMismatchedHashAndPassword, true},
		{"missing bearer", heritage.ErrMissingBearerToken, true},
		{"reset link", heritage.ErrResetInvalid, true},
		{"inactive user is authz, not auth", heritage.ErrInactiveUser, false},
		{"conflict is not auth", heritage.ErrEmailTaken, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, heritage.IsAuthError(tt.err))
		})
	}
}

func TestIsConflictError(t *testing.T) {
	assert.True(t, heritage.IsConflictError(heritage.ErrEmailTaken))
	assert.True(t, heritage.IsConflictError(heritage.ErrUsernameTaken))
	assert.False(t, heritage.IsConflictError(heritage.ErrMismatchedHashAndPassword))
	assert.False(t, heritage.IsConflictError(nil))
}
