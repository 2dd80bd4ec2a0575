package heritage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// newTestDB spins up an in-memory sqlite database with the full schema
// derived from the models. One connection keeps the memory store alive
// for the duration of the test.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*ItemTag)(nil))

	ctx := context.Background()
	models := []any{
		(*User)(nil),
		(*Token)(nil),
		(*PasswordReset)(nil),
		(*CulturalItem)(nil),
		(*Tag)(nil),
		(*ItemTag)(nil),
		(*Media)(nil),
		(*Category)(nil),
		(*BlogPost)(nil),
		(*Event)(nil),
		(*EventRegistration)(nil),
		(*Comment)(nil),
		(*UserFavorite)(nil),
		(*Notification)(nil),
		(*Contribution)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// seedUser inserts a user with the given password hashed at the lowest
// cost so suites stay fast.
func seedUser(t *testing.T, db *bun.DB, email, username, password string) *User {
	t.Helper()

	hash, err := HashPasswordWithCost(password, 4)
	require.NoError(t, err)

	user := &User{
		Role:         RoleMember,
		Status:       UserStatusActive,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	repo := NewUsersRepository(db)
	created, err := repo.Create(context.Background(), user)
	require.NoError(t, err)

	return created
}
