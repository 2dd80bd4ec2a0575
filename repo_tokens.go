package heritage

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Tokens interface {
	repository.Repository[*Token]

	GetByValue(ctx context.Context, raw string) (*Token, error)
	GetByValueTx(ctx context.Context, tx bun.IDB, raw string) (*Token, error)

	Revoke(ctx context.Context, raw string) error
	RevokeTx(ctx context.Context, tx bun.IDB, raw string) error
	RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int64, error)
	RevokeAllForUserExcept(ctx context.Context, userID uuid.UUID, keep string) (int64, error)

	ExtendExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) error
	ExtendExpiryTx(ctx context.Context, tx bun.IDB, id uuid.UUID, expiresAt time.Time) error

	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type tokens struct {
	repository.Repository[*Token]
	db *bun.DB
}

var (
	_ Tokens                        = (*tokens)(nil)
	_ repository.Repository[*Token] = (*tokens)(nil)
)

func NewTokensRepository(db *bun.DB) Tokens {
	repo := repository.NewRepository[*Token](db, repository.ModelHandlers[*Token]{
		NewRecord: func() *Token { return &Token{} },
		GetID: func(t *Token) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Token, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &tokens{
		Repository: repo,
		db:         db,
	}
}

func (r *tokens) GetByValue(ctx context.Context, raw string) (*Token, error) {
	return r.GetByValueTx(ctx, r.db, raw)
}

// GetByValueTx loads a token row and its owner regardless of the row's
// revoked or expired state; policy lives in the token store, not here.
func (r *tokens) GetByValueTx(ctx context.Context, tx bun.IDB, raw string) (*Token, error) {
	record := &Token{}

	err := tx.NewSelect().
		Model(record).
		Relation("User").
		Where("?TableAlias.token = ?", raw).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *tokens) Revoke(ctx context.Context, raw string) error {
	return r.RevokeTx(ctx, r.db, raw)
}

// RevokeTx flags a token as revoked. Revoking an already revoked or
// unknown token is not an error; logout must be idempotent.
func (r *tokens) RevokeTx(ctx context.Context, tx bun.IDB, raw string) error {
	_, err := tx.NewUpdate().
		Model((*Token)(nil)).
		Set("revoked = TRUE").
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.token = ?", raw).
		Exec(ctx)

	return err
}

func (r *tokens) RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int64, error) {
	res, err := tx.NewUpdate().
		Model((*Token)(nil)).
		Set("revoked = TRUE").
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.revoked = FALSE").
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// RevokeAllForUserExcept tears down every live session for a user but
// the one presented, so a password change does not log the caller out.
func (r *tokens) RevokeAllForUserExcept(ctx context.Context, userID uuid.UUID, keep string) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*Token)(nil)).
		Set("revoked = TRUE").
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.token != ?", keep).
		Where("?TableAlias.revoked = FALSE").
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *tokens) ExtendExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	return r.ExtendExpiryTx(ctx, r.db, id, expiresAt)
}

// ExtendExpiryTx pushes a token's expiry forward. The guard clause
// keeps renewal monotonic: a stale writer can never shrink a lifetime
// another request already extended.
func (r *tokens) ExtendExpiryTx(ctx context.Context, tx bun.IDB, id uuid.UUID, expiresAt time.Time) error {
	_, err := tx.NewUpdate().
		Model((*Token)(nil)).
		Set("expires_at = ?", expiresAt).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.expires_at < ?", expiresAt).
		Exec(ctx)

	return err
}

// PurgeExpired hard-deletes token rows that expired before cutoff.
// Meant for a periodic sweep; validation never depends on it.
func (r *tokens) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*Token)(nil)).
		Where("?TableAlias.expires_at < ?", cutoff).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
