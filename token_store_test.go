package heritage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenValue(t *testing.T) {
	seen := map[string]bool{}

	for i := 0; i < 10; i++ {
		value, err := GenerateTokenValue()
		require.NoError(t, err)

		// 32 bytes encode to 43 base64url characters, no padding.
		assert.Len(t, value, 43)
		assert.NotContains(t, value, "=")
		assert.False(t, seen[value], "token values must not repeat")
		seen[value] = true
	}
}

func TestTokenStoreIssueAndResolve(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, db, "issue@example.com", "issuer", "password123")

	store := NewTokenStore(repo, time.Hour, 0)

	value, err := store.Issue(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, value, 43)

	record, err := store.Resolve(ctx, value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, record.UserID)
	require.NotNil(t, record.User, "resolve loads the owning user")
	assert.Equal(t, user.Email, record.User.Email)
}

func TestTokenStoreResolveFailures(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, db, "failures@example.com", "failures", "password123")

	store := NewTokenStore(repo, time.Hour, 0)

	t.Run("empty value", func(t *testing.T) {
		_, err := store.Resolve(ctx, "")
		assert.Equal(t, ErrTokenNotFound, err)
	})

	t.Run("unknown value", func(t *testing.T) {
		_, err := store.Resolve(ctx, "bm90LWEtcmVhbC10b2tlbi12YWx1ZS1hdC1hbGwtbm8")
		assert.Equal(t, ErrTokenNotFound, err)
	})

	t.Run("revoked token", func(t *testing.T) {
		value, err := store.Issue(ctx, user.ID)
		require.NoError(t, err)
		require.NoError(t, store.Revoke(ctx, value))

		_, err = store.Resolve(ctx, value)
		assert.Equal(t, ErrTokenRevoked, err)
	})

	t.Run("expired token", func(t *testing.T) {
		value, err := store.Issue(ctx, user.ID)
		require.NoError(t, err)

		store.nowFn = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { store.nowFn = time.Now }()

		_, err = store.Resolve(ctx, value)
		assert.Equal(t, ErrTokenExpired, err)
	})
}

func TestTokenStoreSingleActiveSession(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, db, "single@example.com", "single", "password123")

	store := NewTokenStore(repo, time.Hour, 0)

	first, err := store.Issue(ctx, user.ID)
	require.NoError(t, err)

	second, err := store.Issue(ctx, user.ID)
	require.NoError(t, err)

	// A login on a second device logs the first one out.
	_, err = store.Resolve(ctx, first)
	assert.Equal(t, ErrTokenRevoked, err)

	_, err = store.Resolve(ctx, second)
	assert.NoError(t, err)
}

func TestTokenStoreSlidingRenewal(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, db, "sliding@example.com", "sliding", "password123")

	ttl := 10 * time.Hour
	store := NewTokenStore(repo, ttl, 0)

	base := time.Now()
	current := base
	store.nowFn = func() time.Time { return current }

	value, err := store.Issue(ctx, user.ID)
	require.NoError(t, err)

	t.Run("no renewal while plenty of lifetime remains", func(t *testing.T) {
		current = base.Add(5 * time.Hour)

		record, err := store.Resolve(ctx, value)
		require.NoError(t, err)
		assert.WithinDuration(t, base.Add(ttl), record.ExpiresAt, time.Second)
	})

	t.Run("renewal inside the final tenth of the ttl", func(t *testing.T) {
		current = base.Add(ttl - 30*time.Minute)

		record, err := store.Resolve(ctx, value)
		require.NoError(t, err)
		assert.WithinDuration(t, current.Add(ttl), record.ExpiresAt, time.Second)

		// The row itself moved too, not just the returned copy.
		row, err := repo.Tokens().GetByValue(ctx, value)
		require.NoError(t, err)
		assert.WithinDuration(t, current.Add(ttl), row.ExpiresAt, time.Second)
	})

	t.Run("renewal never moves expiry backwards", func(t *testing.T) {
		row, err := repo.Tokens().GetByValue(ctx, value)
		require.NoError(t, err)

		earlier := row.ExpiresAt.Add(-time.Hour)
		require.NoError(t, repo.Tokens().ExtendExpiry(ctx, row.ID, earlier))

		after, err := repo.Tokens().GetByValue(ctx, value)
		require.NoError(t, err)
		assert.WithinDuration(t, row.ExpiresAt, after.ExpiresAt, time.Second)
	})
}

func TestTokenStoreSessionMaxAge(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, db, "maxage@example.com", "maxage", "password123")

	ttl := 10 * 24 * time.Hour
	maxAge := 7 * 24 * time.Hour
	store := NewTokenStore(repo, ttl, maxAge)

	value, err := store.Issue(ctx, user.ID)
	require.NoError(t, err)

	// Eight days later the token is still inside its ttl but past the
	// absolute session cap.
	store.nowFn = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	_, err = store.Resolve(ctx, value)
	assert.Equal(t, ErrSessionTooOld, err)
}

func TestTokenStoreRevoke(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, db, "revoke@example.com", "revoker", "password123")

	store := NewTokenStore(repo, time.Hour, 0)

	t.Run("empty value is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Revoke(ctx, ""))
	})

	t.Run("unknown value succeeds silently", func(t *testing.T) {
		assert.NoError(t, store.Revoke(ctx, "bm90LWEtcmVhbC10b2tlbi12YWx1ZS1hdC1hbGwtbm8"))
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		value, err := store.Issue(ctx, user.ID)
		require.NoError(t, err)

		assert.NoError(t, store.Revoke(ctx, value))
		assert.NoError(t, store.Revoke(ctx, value))
	})
}

func TestTokenStoreRevokeAllForUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, db, "revokeall@example.com", "revokeall", "password123")
	other := seedUser(t, db, "bystander@example.com", "bystander", "password123")

	store := NewTokenStore(repo, time.Hour, 0)

	_, err := store.Issue(ctx, user.ID)
	require.NoError(t, err)
	value, err := store.Issue(ctx, user.ID)
	require.NoError(t, err)
	otherValue, err := store.Issue(ctx, other.ID)
	require.NoError(t, err)

	revoked, err := store.RevokeAllForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), revoked, "only the live token counts, the first was already revoked by reissue")

	_, err = store.Resolve(ctx, value)
	assert.Equal(t, ErrTokenRevoked, err)

	// Other accounts are untouched.
	_, err = store.Resolve(ctx, otherValue)
	assert.NoError(t, err)
}

func TestTokensPurgeExpired(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, db, "purge@example.com", "purger", "password123")

	tokens := repo.Tokens()

	stale := &Token{
		ID:        uuid.New(),
		Token:     "c3RhbGUtdG9rZW4tdmFsdWUtZm9yLXB1cmdlLXRlc3Q",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-48 * time.Hour),
	}
	_, err := tokens.Create(ctx, stale)
	require.NoError(t, err)

	live := &Token{
		ID:        uuid.New(),
		Token:     "bGl2ZS10b2tlbi12YWx1ZS1mb3ItcHVyZ2UtdGVzdDE",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	_, err = tokens.Create(ctx, live)
	require.NoError(t, err)

	purged, err := tokens.PurgeExpired(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = tokens.GetByValue(ctx, live.Token)
	assert.NoError(t, err)
}
