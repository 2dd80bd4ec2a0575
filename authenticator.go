package heritage

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type auther struct {
	provider IdentityProvider
	store    *TokenStore
	repo     RepositoryManager
	logger   Logger
}

var _ Authenticator = (*auther)(nil)

// NewAuthenticator combines credential verification with opaque token
// issuance. The returned string from Login is the bearer value the
// client must present on every subsequent request.
func NewAuthenticator(provider IdentityProvider, store *TokenStore, repo RepositoryManager) Authenticator {
	return &auther{
		provider: provider,
		store:    store,
		repo:     repo,
		logger:   defLogger{},
	}
}

func (a *auther) WithLogger(l Logger) *auther {
	if l != nil {
		a.logger = l
	}
	return a
}

func (a *auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := a.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		return "", err
	}

	userID, err := uuid.Parse(identity.ID())
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "identity carries a malformed id")
	}

	token, err := a.store.Issue(ctx, userID)
	if err != nil {
		return "", err
	}

	a.logger.Debug("issued session", "user_id", identity.ID())

	return token, nil
}

// UserFromToken resolves a bearer value to its owning user. The token
// row carries the user via its relation; a row without one is treated
// as an internal inconsistency, not an auth failure the client caused.
func (a *auther) UserFromToken(ctx context.Context, raw string) (*User, error) {
	record, err := a.store.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	user := record.User
	if user == nil {
		user, err = a.repo.Users().GetByID(ctx, record.UserID.String())
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "token resolved but owner lookup failed")
		}
	}

	user.EnsureStatus()

	return user, nil
}

func (a *auther) Logout(ctx context.Context, raw string) error {
	return a.store.Revoke(ctx, raw)
}
