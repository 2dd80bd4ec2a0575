package heritage_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/heritagehq/heritage"
	"github.com/stretchr/testify/assert"
)

func TestUserStatusHelpers(t *testing.T) {
	t.Run("zero status means active", func(t *testing.T) {
		user := &heritage.User{}
		assert.True(t, user.IsActive())
		assert.Equal(t, heritage.UserStatusActive, user.Status)
	})

	t.Run("suspended user is not active", func(t *testing.T) {
		user := &heritage.User{Status: heritage.UserStatusSuspended}
		assert.False(t, user.IsActive())
	})

	t.Run("EnsureStatus does not overwrite", func(t *testing.T) {
		user := &heritage.User{Status: heritage.UserStatusSuspended}
		user.EnsureStatus()
		assert.Equal(t, heritage.UserStatusSuspended, user.Status)
	})
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&heritage.User{Role: heritage.RoleAdmin}).IsAdmin())
	assert.False(t, (&heritage.User{Role: heritage.RoleCurator}).IsAdmin())
	assert.False(t, (&heritage.User{Role: heritage.RoleMember}).IsAdmin())
	assert.False(t, (&heritage.User{}).IsAdmin())
}

func TestUserAddMetadata(t *testing.T) {
	user := &heritage.User{}
	user.AddMetadata("source", "import").AddMetadata("batch", 7)

	assert.Equal(t, "import", user.Metadata["source"])
	assert.Equal(t, 7, user.Metadata["batch"])
}

func TestMarkPasswordAsReseted(t *testing.T) {
	id := uuid.New()
	record := heritage.MarkPasswordAsReseted(id)

	assert.Equal(t, id, record.ID)
	assert.Equal(t, heritage.ResetChangedStatus, record.Status)
	assert.NotNil(t, record.ResetedAt)
}
