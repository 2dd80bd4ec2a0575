package heritage

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PostFilter narrows blog listings. Zero values mean "any".
type PostFilter struct {
	CategorySlug  string
	Search        string
	PublishedOnly bool
	Limit         int
	Offset        int
}

type BlogPosts interface {
	repository.Repository[*BlogPost]

	ListWithFilter(ctx context.Context, filter PostFilter) ([]*BlogPost, int, error)
	GetBySlug(ctx context.Context, slug string) (*BlogPost, error)
	Publish(ctx context.Context, id uuid.UUID) (*BlogPost, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type blogPosts struct {
	repository.Repository[*BlogPost]
	db *bun.DB
}

var _ BlogPosts = (*blogPosts)(nil)

func NewBlogPostsRepository(db *bun.DB) BlogPosts {
	repo := repository.NewRepository[*BlogPost](db, repository.ModelHandlers[*BlogPost]{
		NewRecord: func() *BlogPost { return &BlogPost{} },
		GetID: func(m *BlogPost) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *BlogPost, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})

	return &blogPosts{
		Repository: repo,
		db:         db,
	}
}

func (r *blogPosts) ListWithFilter(ctx context.Context, filter PostFilter) ([]*BlogPost, int, error) {
	records := []*BlogPost{}

	q := r.db.NewSelect().
		Model(&records).
		Relation("Author").
		Relation("Category")

	if filter.PublishedOnly {
		q = q.Where("?TableAlias.published = TRUE")
	}

	if filter.CategorySlug != "" {
		q = q.Where(`EXISTS (
			SELECT 1 FROM categories AS cat
			WHERE cat.id = ?TableAlias.category_id AND cat.slug = ?
		)`, filter.CategorySlug)
	}

	if filter.Search != "" {
		needle := "%" + strings.TrimSpace(filter.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.title LIKE ?", needle).
				WhereOr("?TableAlias.excerpt LIKE ?", needle)
		})
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	total, err := q.
		Order("post.published_at DESC NULLS LAST", "post.created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *blogPosts) GetBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	record := &BlogPost{}

	err := r.db.NewSelect().
		Model(record).
		Relation("Author").
		Relation("Category").
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

func (r *blogPosts) Publish(ctx context.Context, id uuid.UUID) (*BlogPost, error) {
	now := time.Now()
	record := &BlogPost{
		ID:          id,
		Published:   true,
		PublishedAt: &now,
	}

	return r.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (r *blogPosts) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*BlogPost)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

// CategoryWithCount pairs a category with how many live posts it holds.
type CategoryWithCount struct {
	Category  `bun:",extend"`
	PostCount int `bun:"post_count,scanonly" json:"post_count"`
}

type Categories interface {
	repository.Repository[*Category]

	ListWithCounts(ctx context.Context) ([]*CategoryWithCount, error)
}

type categories struct {
	repository.Repository[*Category]
	db *bun.DB
}

var _ Categories = (*categories)(nil)

func NewCategoriesRepository(db *bun.DB) Categories {
	repo := repository.NewRepository[*Category](db, repository.ModelHandlers[*Category]{
		NewRecord: func() *Category { return &Category{} },
		GetID: func(m *Category) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Category, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})

	return &categories{
		Repository: repo,
		db:         db,
	}
}

func (r *categories) ListWithCounts(ctx context.Context) ([]*CategoryWithCount, error) {
	records := []*CategoryWithCount{}

	err := r.db.NewSelect().
		Model(&records).
		ColumnExpr("cat.*").
		ColumnExpr(`(
			SELECT COUNT(*) FROM blog_posts AS post
			WHERE post.category_id = cat.id AND post.deleted_at IS NULL
		) AS post_count`).
		Order("cat.name ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
