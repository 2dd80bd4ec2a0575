package heritage

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Comments interface {
	repository.Repository[*Comment]

	ListForTarget(ctx context.Context, kind CommentTarget, targetID uuid.UUID, limit, offset int) ([]*Comment, int, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type comments struct {
	repository.Repository[*Comment]
	db *bun.DB
}

var _ Comments = (*comments)(nil)

func NewCommentsRepository(db *bun.DB) Comments {
	repo := repository.NewRepository[*Comment](db, repository.ModelHandlers[*Comment]{
		NewRecord: func() *Comment { return &Comment{} },
		GetID: func(m *Comment) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Comment, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &comments{
		Repository: repo,
		db:         db,
	}
}

func (r *comments) ListForTarget(ctx context.Context, kind CommentTarget, targetID uuid.UUID, limit, offset int) ([]*Comment, int, error) {
	records := []*Comment{}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	total, err := r.db.NewSelect().
		Model(&records).
		Relation("Author").
		Where("?TableAlias.target_kind = ?", kind).
		Where("?TableAlias.target_id = ?", targetID).
		Order("cmt.created_at ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *comments) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Comment)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

type Favorites interface {
	Add(ctx context.Context, userID, itemID uuid.UUID) (*UserFavorite, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*UserFavorite, error)
	Exists(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
}

type favorites struct {
	db *bun.DB
}

var _ Favorites = (*favorites)(nil)

func NewFavoritesRepository(db *bun.DB) Favorites {
	return &favorites{db: db}
}

func (r *favorites) Add(ctx context.Context, userID, itemID uuid.UUID) (*UserFavorite, error) {
	record := &UserFavorite{
		ID:     uuid.New(),
		UserID: userID,
		ItemID: itemID,
	}

	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (user_id, item_id) DO NOTHING").
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *favorites) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*UserFavorite)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.item_id = ?", itemID).
		Exec(ctx)

	return err
}

func (r *favorites) ListForUser(ctx context.Context, userID uuid.UUID) ([]*UserFavorite, error) {
	records := []*UserFavorite{}

	err := r.db.NewSelect().
		Model(&records).
		Relation("Item").
		Where("?TableAlias.user_id = ?", userID).
		Order("fav.created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *favorites) Exists(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	return r.db.NewSelect().
		Model((*UserFavorite)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.item_id = ?", itemID).
		Exists(ctx)
}

type Notifications interface {
	repository.Repository[*Notification]

	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
	NotifyTx(ctx context.Context, tx bun.IDB, n *Notification) (*Notification, error)
}

type notifications struct {
	repository.Repository[*Notification]
	db *bun.DB
}

var _ Notifications = (*notifications)(nil)

func NewNotificationsRepository(db *bun.DB) Notifications {
	repo := repository.NewRepository[*Notification](db, repository.ModelHandlers[*Notification]{
		NewRecord: func() *Notification { return &Notification{} },
		GetID: func(m *Notification) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Notification, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &notifications{
		Repository: repo,
		db:         db,
	}
}

func (r *notifications) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	records := []*Notification{}

	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID)

	if unreadOnly {
		q = q.Where("?TableAlias.read_at IS NULL")
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	total, err := q.
		Order("ntf.created_at DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *notifications) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*Notification)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.read_at IS NULL").
		Count(ctx)
}

func (r *notifications) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("read_at = ?", time.Now()).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.read_at IS NULL").
		Exec(ctx)

	return err
}

func (r *notifications) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("read_at = ?", time.Now()).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.read_at IS NULL").
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// DeleteForUser removes a notification, scoped to its owner so one user
// cannot delete another's.
func (r *notifications) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Notification)(nil)).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)

	return err
}

func (r *notifications) NotifyTx(ctx context.Context, tx bun.IDB, n *Notification) (*Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	return r.Repository.CreateTx(ctx, tx, n)
}

type Contributions interface {
	repository.Repository[*Contribution]

	ListPending(ctx context.Context, limit, offset int) ([]*Contribution, int, error)
	ListForAuthor(ctx context.Context, authorID uuid.UUID) ([]*Contribution, error)
	ReviewTx(ctx context.Context, tx bun.IDB, id, reviewerID uuid.UUID, status ContributionStatus, note string) (*Contribution, error)
}

type contributions struct {
	repository.Repository[*Contribution]
	db *bun.DB
}

var _ Contributions = (*contributions)(nil)

func NewContributionsRepository(db *bun.DB) Contributions {
	repo := repository.NewRepository[*Contribution](db, repository.ModelHandlers[*Contribution]{
		NewRecord: func() *Contribution { return &Contribution{} },
		GetID: func(m *Contribution) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Contribution, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &contributions{
		Repository: repo,
		db:         db,
	}
}

func (r *contributions) ListPending(ctx context.Context, limit, offset int) ([]*Contribution, int, error) {
	records := []*Contribution{}

	if limit <= 0 || limit > 100 {
		limit = 25
	}

	total, err := r.db.NewSelect().
		Model(&records).
		Relation("Author").
		Relation("Item").
		Where("?TableAlias.status = ?", ContributionSubmitted).
		Order("ctb.created_at ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *contributions) ListForAuthor(ctx context.Context, authorID uuid.UUID) ([]*Contribution, error) {
	records := []*Contribution{}

	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.author_id = ?", authorID).
		Order("ctb.created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *contributions) ReviewTx(ctx context.Context, tx bun.IDB, id, reviewerID uuid.UUID, status ContributionStatus, note string) (*Contribution, error) {
	now := time.Now()
	record := &Contribution{
		ID:         id,
		Status:     status,
		ReviewerID: &reviewerID,
		ReviewNote: note,
		ReviewedAt: &now,
	}

	return r.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}
