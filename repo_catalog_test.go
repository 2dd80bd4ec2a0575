package heritage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func seedItem(t *testing.T, db *bun.DB, author *User, title, region, period string, status ItemStatus) *CulturalItem {
	t.Helper()

	repo := NewCulturalItemsRepository(db)
	record := &CulturalItem{
		ID:       uuid.New(),
		Title:    title,
		Slug:     Slugify(title),
		Summary:  "summary of " + title,
		Body:     "body of " + title,
		Region:   region,
		Period:   period,
		Status:   status,
		AuthorID: author.ID,
	}

	created, err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	return created
}

func TestCulturalItemsList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	author := seedUser(t, db, "curator@example.com", "curator", "password123")
	repo := NewCulturalItemsRepository(db)

	seedItem(t, db, author, "Weaving Patterns", "andes", "colonial", ItemStatusPublished)
	seedItem(t, db, author, "Terraced Farming", "andes", "pre-columbian", ItemStatusPublished)
	seedItem(t, db, author, "Harvest Songs", "sahel", "modern", ItemStatusPublished)
	seedItem(t, db, author, "Unfinished Notes", "sahel", "modern", ItemStatusDraft)

	t.Run("status filter", func(t *testing.T) {
		records, total, err := repo.ListWithFilter(ctx, ItemFilter{Status: ItemStatusPublished})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, records, 3)
	})

	t.Run("region filter", func(t *testing.T) {
		records, total, err := repo.ListWithFilter(ctx, ItemFilter{Status: ItemStatusPublished, Region: "andes"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, records, 2)
	})

	t.Run("period filter", func(t *testing.T) {
		_, total, err := repo.ListWithFilter(ctx, ItemFilter{Status: ItemStatusPublished, Period: "colonial"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("search matches title and summary", func(t *testing.T) {
		_, total, err := repo.ListWithFilter(ctx, ItemFilter{Status: ItemStatusPublished, Search: "Songs"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, total, err = repo.ListWithFilter(ctx, ItemFilter{Status: ItemStatusPublished, Search: "summary of Weaving"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("pagination", func(t *testing.T) {
		records, total, err := repo.ListWithFilter(ctx, ItemFilter{Status: ItemStatusPublished, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, records, 2)

		records, _, err = repo.ListWithFilter(ctx, ItemFilter{Status: ItemStatusPublished, Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("author relation is loaded", func(t *testing.T) {
		records, _, err := repo.ListWithFilter(ctx, ItemFilter{Status: ItemStatusPublished, Region: "sahel"})
		require.NoError(t, err)
		require.NotEmpty(t, records)
		require.NotNil(t, records[0].Author)
		assert.Equal(t, author.Email, records[0].Author.Email)
	})
}

func TestCulturalItemsTagging(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	author := seedUser(t, db, "tagger@example.com", "tagger", "password123")

	items := NewCulturalItemsRepository(db)
	tags := NewTagsRepository(db)

	item := seedItem(t, db, author, "Clay Vessels", "andes", "colonial", ItemStatusPublished)
	other := seedItem(t, db, author, "Stone Tools", "andes", "pre-columbian", ItemStatusPublished)

	t.Run("GetOrCreate is idempotent per slug", func(t *testing.T) {
		first, err := tags.GetOrCreateByNameTx(ctx, db, "Oral Tradition")
		require.NoError(t, err)
		assert.Equal(t, "oral-tradition", first.Slug)

		second, err := tags.GetOrCreateByNameTx(ctx, db, "oral tradition")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("attach, filter and detach", func(t *testing.T) {
		tag, err := tags.GetOrCreateByNameTx(ctx, db, "Pottery")
		require.NoError(t, err)

		require.NoError(t, items.AttachTagTx(ctx, db, item.ID, tag.ID))
		// Attaching twice is a no-op, not an error.
		require.NoError(t, items.AttachTagTx(ctx, db, item.ID, tag.ID))

		records, total, err := items.ListWithFilter(ctx, ItemFilter{TagSlug: "pottery"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, records, 1)
		assert.Equal(t, item.ID, records[0].ID)
		assert.NotEqual(t, other.ID, records[0].ID)

		require.NoError(t, items.DetachTagTx(ctx, db, item.ID, tag.ID))

		_, total, err = items.ListWithFilter(ctx, ItemFilter{TagSlug: "pottery"})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})
}

func TestCulturalItemsLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	author := seedUser(t, db, "lifecycle2@example.com", "lifecycle2", "password123")
	repo := NewCulturalItemsRepository(db)

	item := seedItem(t, db, author, "Basket Weaving", "sahel", "modern", ItemStatusDraft)

	t.Run("publish stamps published_at", func(t *testing.T) {
		published, err := repo.Publish(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, ItemStatusPublished, published.Status)
		assert.NotNil(t, published.PublishedAt)
	})

	t.Run("archive", func(t *testing.T) {
		archived, err := repo.Archive(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, ItemStatusArchived, archived.Status)
	})

	t.Run("view counter", func(t *testing.T) {
		require.NoError(t, repo.IncrementViews(ctx, item.ID))
		require.NoError(t, repo.IncrementViews(ctx, item.ID))

		record, err := repo.GetBySlug(ctx, "basket-weaving")
		require.NoError(t, err)
		assert.Equal(t, int64(2), record.ViewCount)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		_, err := repo.GetBySlug(ctx, "no-such-entry")
		assert.Error(t, err)
	})
}

func TestMediaRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	author := seedUser(t, db, "media@example.com", "mediauser", "password123")

	item := seedItem(t, db, author, "Festival Masks", "andes", "modern", ItemStatusPublished)
	media := NewMediaRepository(db)

	first, err := media.Create(ctx, &Media{
		ID:         uuid.New(),
		ItemID:     item.ID,
		Kind:       MediaKindImage,
		URL:        "https://cdn.example.com/masks-front.jpg",
		Position:   1,
		UploaderID: author.ID,
	})
	require.NoError(t, err)

	_, err = media.Create(ctx, &Media{
		ID:         uuid.New(),
		ItemID:     item.ID,
		Kind:       MediaKindAudio,
		URL:        "https://cdn.example.com/festival-chant.mp3",
		Position:   0,
		UploaderID: author.ID,
	})
	require.NoError(t, err)

	records, err := media.ListForItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, MediaKindAudio, records[0].Kind, "ordered by position")

	require.NoError(t, media.DeleteByID(ctx, first.ID))

	records, err = media.ListForItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
