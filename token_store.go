package heritage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// tokenByteLength is the entropy of an issued credential. 32 bytes
// encode to 43 base64url characters.
const tokenByteLength = 32

// renewalFraction controls sliding expiration: once less than this
// fraction of the TTL remains, a successful validation pushes the
// expiry out to now+TTL again.
const renewalFraction = 0.1

// TokenStore issues, validates and revokes opaque bearer tokens. The
// token value is random, the database row is the session: revocation
// and expiry are plain column updates visible on the next request.
type TokenStore struct {
	repo   RepositoryManager
	ttl    time.Duration
	maxAge time.Duration
	logger Logger

	// nowFn is swappable so tests can steer the clock.
	nowFn func() time.Time
}

// NewTokenStore wires a store against the repository manager. maxAge
// of zero disables the absolute session cap.
func NewTokenStore(repo RepositoryManager, ttl, maxAge time.Duration) *TokenStore {
	return &TokenStore{
		repo:   repo,
		ttl:    ttl,
		maxAge: maxAge,
		logger: defLogger{},
		nowFn:  time.Now,
	}
}

func (s *TokenStore) WithLogger(l Logger) *TokenStore {
	if l != nil {
		s.logger = l
	}
	return s
}

// GenerateTokenValue returns a fresh random credential: 32 bytes of
// CSPRNG output, base64url without padding.
func GenerateTokenValue() (string, error) {
	buf := make([]byte, tokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read random bytes for token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issue mints a token for the user and persists it. Every live token
// the user already holds is revoked in the same transaction, so at
// most one session is active per account and a login on a second
// device logs the first one out.
func (s *TokenStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	value, err := GenerateTokenValue()
	if err != nil {
		return "", err
	}

	now := s.nowFn()
	record := &Token{
		ID:        uuid.New(),
		Token:     value,
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Tokens().RevokeAllForUserTx(ctx, tx, userID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke prior sessions")
		}

		if _, err := s.repo.Tokens().CreateTx(ctx, tx, record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist token")
		}

		return nil
	})

	if err != nil {
		return "", err
	}

	return value, nil
}

// Resolve validates a presented bearer value and returns the token row
// with its owner loaded. Failures are distinct errors internally but
// share one client-facing message; the middleware logs the reason and
// returns a generic 401.
//
// A validation that finds the token in the last tenth of its TTL
// renews it to now+TTL. The write is monotonic: it only ever moves
// expires_at forward, so concurrent renewals cannot shorten a session.
func (s *TokenStore) Resolve(ctx context.Context, raw string) (*Token, error) {
	if raw == "" {
		return nil, ErrTokenNotFound
	}

	record, err := s.repo.Tokens().GetByValue(ctx, raw)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTokenNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "token lookup failed")
	}

	now := s.nowFn()

	if record.Revoked {
		return nil, ErrTokenRevoked
	}

	if !record.ExpiresAt.After(now) {
		return nil, ErrTokenExpired
	}

	if s.maxAge > 0 && record.CreatedAt != nil {
		if record.CreatedAt.Before(now.Add(-s.maxAge)) {
			return nil, ErrSessionTooOld
		}
	}

	if s.shouldRenew(record, now) {
		if err := s.repo.Tokens().ExtendExpiry(ctx, record.ID, now.Add(s.ttl)); err != nil {
			// A failed renewal does not fail the request; the token is
			// still valid until its current expiry.
			s.logger.Error("token renewal failed", "token_id", record.ID.String(), "error", err)
		} else {
			record.ExpiresAt = now.Add(s.ttl)
		}
	}

	return record, nil
}

func (s *TokenStore) shouldRenew(record *Token, now time.Time) bool {
	remaining := record.ExpiresAt.Sub(now)
	return float64(remaining) < float64(s.ttl)*renewalFraction
}

// Revoke invalidates the presented token. Unknown and already revoked
// values succeed silently; logout is idempotent.
func (s *TokenStore) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}

	if err := s.repo.Tokens().Revoke(ctx, raw); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke token")
	}

	return nil
}

// RevokeAllForUser tears down every live session for a user, used when
// an account is suspended or a password changes.
func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var revoked int64

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := s.repo.Tokens().RevokeAllForUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		revoked = n
		return nil
	})

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke user sessions")
	}

	return revoked, nil
}

// RevokeOtherSessions invalidates every session for a user except the
// one presented.
func (s *TokenStore) RevokeOtherSessions(ctx context.Context, userID uuid.UUID, keep string) (int64, error) {
	revoked, err := s.repo.Tokens().RevokeAllForUserExcept(ctx, userID, keep)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke user sessions")
	}

	return revoked, nil
}
