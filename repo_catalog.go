package heritage

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ItemFilter narrows catalog listings. Zero values mean "any".
type ItemFilter struct {
	Region  string
	Period  string
	TagSlug string
	Status  ItemStatus
	Search  string
	Limit   int
	Offset  int
}

type CulturalItems interface {
	repository.Repository[*CulturalItem]

	ListWithFilter(ctx context.Context, filter ItemFilter) ([]*CulturalItem, int, error)
	GetBySlug(ctx context.Context, slug string) (*CulturalItem, error)
	Publish(ctx context.Context, id uuid.UUID) (*CulturalItem, error)
	Archive(ctx context.Context, id uuid.UUID) (*CulturalItem, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	AttachTagTx(ctx context.Context, tx bun.IDB, itemID, tagID uuid.UUID) error
	DetachTagTx(ctx context.Context, tx bun.IDB, itemID, tagID uuid.UUID) error
}

type culturalItems struct {
	repository.Repository[*CulturalItem]
	db *bun.DB
}

var _ CulturalItems = (*culturalItems)(nil)

func NewCulturalItemsRepository(db *bun.DB) CulturalItems {
	repo := repository.NewRepository[*CulturalItem](db, repository.ModelHandlers[*CulturalItem]{
		NewRecord: func() *CulturalItem { return &CulturalItem{} },
		GetID: func(m *CulturalItem) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *CulturalItem, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})

	return &culturalItems{
		Repository: repo,
		db:         db,
	}
}

func (r *culturalItems) ListWithFilter(ctx context.Context, filter ItemFilter) ([]*CulturalItem, int, error) {
	records := []*CulturalItem{}

	q := r.db.NewSelect().
		Model(&records).
		Relation("Author").
		Relation("Tags")

	if filter.Status != "" {
		q = q.Where("?TableAlias.status = ?", filter.Status)
	}

	if filter.Region != "" {
		q = q.Where("?TableAlias.region = ?", filter.Region)
	}

	if filter.Period != "" {
		q = q.Where("?TableAlias.period = ?", filter.Period)
	}

	if filter.TagSlug != "" {
		q = q.Where(`EXISTS (
			SELECT 1 FROM item_tags AS itag
			JOIN tags AS tag ON tag.id = itag.tag_id
			WHERE itag.item_id = ?TableAlias.id AND tag.slug = ?
		)`, filter.TagSlug)
	}

	if filter.Search != "" {
		needle := "%" + strings.TrimSpace(filter.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.title LIKE ?", needle).
				WhereOr("?TableAlias.summary LIKE ?", needle)
		})
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	total, err := q.
		Order("itm.published_at DESC NULLS LAST", "itm.created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *culturalItems) GetBySlug(ctx context.Context, slug string) (*CulturalItem, error) {
	record := &CulturalItem{}

	err := r.db.NewSelect().
		Model(record).
		Relation("Author").
		Relation("Tags").
		Relation("Media", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("med.position ASC")
		}).
		Where("?TableAlias.slug = ?", slug).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"slug": slug})
		}
		return nil, err
	}

	return record, nil
}

func (r *culturalItems) Publish(ctx context.Context, id uuid.UUID) (*CulturalItem, error) {
	now := time.Now()
	record := &CulturalItem{
		ID:          id,
		Status:      ItemStatusPublished,
		PublishedAt: &now,
	}

	return r.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (r *culturalItems) Archive(ctx context.Context, id uuid.UUID) (*CulturalItem, error) {
	record := &CulturalItem{
		ID:     id,
		Status: ItemStatusArchived,
	}

	return r.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (r *culturalItems) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*CulturalItem)(nil)).
		Set("view_count = view_count + 1").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

// SoftDelete stamps deleted_at; the entry drops out of every listing
// but its media and comments stay in place.
func (r *culturalItems) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*CulturalItem)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

func (r *culturalItems) AttachTagTx(ctx context.Context, tx bun.IDB, itemID, tagID uuid.UUID) error {
	_, err := tx.NewInsert().
		Model(&ItemTag{ItemID: itemID, TagID: tagID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)

	return err
}

func (r *culturalItems) DetachTagTx(ctx context.Context, tx bun.IDB, itemID, tagID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*ItemTag)(nil)).
		Where("?TableAlias.item_id = ?", itemID).
		Where("?TableAlias.tag_id = ?", tagID).
		Exec(ctx)

	return err
}

type Tags interface {
	repository.Repository[*Tag]

	ListAll(ctx context.Context) ([]*Tag, error)
	GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*Tag, error)
}

type tagsRepo struct {
	repository.Repository[*Tag]
	db *bun.DB
}

var _ Tags = (*tagsRepo)(nil)

func NewTagsRepository(db *bun.DB) Tags {
	repo := repository.NewRepository[*Tag](db, repository.ModelHandlers[*Tag]{
		NewRecord: func() *Tag { return &Tag{} },
		GetID: func(m *Tag) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Tag, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})

	return &tagsRepo{
		Repository: repo,
		db:         db,
	}
}

func (r *tagsRepo) ListAll(ctx context.Context) ([]*Tag, error) {
	records := []*Tag{}

	err := r.db.NewSelect().
		Model(&records).
		Order("tag.name ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *tagsRepo) GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*Tag, error) {
	slug := Slugify(name)

	record := &Tag{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		Limit(1).
		Scan(ctx)

	if err == nil {
		return record, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record = &Tag{
		ID:   uuid.New(),
		Name: strings.TrimSpace(name),
		Slug: slug,
	}

	return r.Repository.CreateTx(ctx, tx, record)
}

type MediaRepository interface {
	repository.Repository[*Media]

	ListForItem(ctx context.Context, itemID uuid.UUID) ([]*Media, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type mediaRepo struct {
	repository.Repository[*Media]
	db *bun.DB
}

var _ MediaRepository = (*mediaRepo)(nil)

func NewMediaRepository(db *bun.DB) MediaRepository {
	repo := repository.NewRepository[*Media](db, repository.ModelHandlers[*Media]{
		NewRecord: func() *Media { return &Media{} },
		GetID: func(m *Media) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Media, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &mediaRepo{
		Repository: repo,
		db:         db,
	}
}

func (r *mediaRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Media)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

func (r *mediaRepo) ListForItem(ctx context.Context, itemID uuid.UUID) ([]*Media, error) {
	records := []*Media{}

	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.item_id = ?", itemID).
		Order("med.position ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
