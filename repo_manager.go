package heritage

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Tokens() Tokens
	PasswordResets() repository.Repository[*PasswordReset]
	CulturalItems() CulturalItems
	Tags() Tags
	Media() MediaRepository
	BlogPosts() BlogPosts
	Categories() Categories
	Events() Events
	Comments() Comments
	Favorites() Favorites
	Notifications() Notifications
	Contributions() Contributions
}

func NewPasswordResetsRepository(db *bun.DB) repository.Repository[*PasswordReset] {
	handlers := repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset {
			return &PasswordReset{}
		},
		GetID: func(record *PasswordReset) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordReset, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db             *bun.DB
	users          Users
	tokens         Tokens
	passwordResets repository.Repository[*PasswordReset]
	culturalItems  CulturalItems
	tags           Tags
	media          MediaRepository
	blogPosts      BlogPosts
	categories     Categories
	events         Events
	comments       Comments
	favorites      Favorites
	notifications  Notifications
	contributions  Contributions
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:             db,
		users:          NewUsersRepository(db),
		tokens:         NewTokensRepository(db),
		passwordResets: NewPasswordResetsRepository(db),
		culturalItems:  NewCulturalItemsRepository(db),
		tags:           NewTagsRepository(db),
		media:          NewMediaRepository(db),
		blogPosts:      NewBlogPostsRepository(db),
		categories:     NewCategoriesRepository(db),
		events:         NewEventsRepository(db),
		comments:       NewCommentsRepository(db),
		favorites:      NewFavoritesRepository(db),
		notifications:  NewNotificationsRepository(db),
		contributions:  NewContributionsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.tokens == nil {
		return errors.New("repository tokens should be initialized")
	}

	if m.passwordResets == nil {
		return errors.New("repository passwordResets should be initialized")
	}

	if m.culturalItems == nil {
		return errors.New("repository culturalItems should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users { return m.users }

func (m mngr) Tokens() Tokens { return m.tokens }

func (m mngr) PasswordResets() repository.Repository[*PasswordReset] {
	return m.passwordResets
}

func (m mngr) CulturalItems() CulturalItems { return m.culturalItems }

func (m mngr) Tags() Tags { return m.tags }

func (m mngr) Media() MediaRepository { return m.media }

func (m mngr) BlogPosts() BlogPosts { return m.blogPosts }

func (m mngr) Categories() Categories { return m.categories }

func (m mngr) Events() Events { return m.events }

func (m mngr) Comments() Comments { return m.comments }

func (m mngr) Favorites() Favorites { return m.favorites }

func (m mngr) Notifications() Notifications { return m.notifications }

func (m mngr) Contributions() Contributions { return m.contributions }
