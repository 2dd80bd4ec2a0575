package heritage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentsListForTarget(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	author := seedUser(t, db, "alice@example.com", "alice", "password123")
	curator := seedUser(t, db, "curator@example.com", "curator", "password123")
	item := seedItem(t, db, curator, "Weaving Patterns", "andes", "colonial", ItemStatusPublished)
	repo := NewCommentsRepository(db)

	first, err := repo.Create(ctx, &Comment{
		ID:         uuid.New(),
		TargetKind: CommentTargetItem,
		TargetID:   item.ID,
		AuthorID:   author.ID,
		Body:       "wonderful documentation",
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &Comment{
		ID:         uuid.New(),
		TargetKind: CommentTargetItem,
		TargetID:   item.ID,
		AuthorID:   curator.ID,
		Body:       "thank you",
	})
	require.NoError(t, err)

	// a comment on some other target never shows up
	_, err = repo.Create(ctx, &Comment{
		ID:         uuid.New(),
		TargetKind: CommentTargetPost,
		TargetID:   uuid.New(),
		AuthorID:   author.ID,
		Body:       "off topic",
	})
	require.NoError(t, err)

	records, total, err := repo.ListForTarget(ctx, CommentTargetItem, item.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].Author)

	require.NoError(t, repo.DeleteByID(ctx, first.ID))

	_, total, err = repo.ListForTarget(ctx, CommentTargetItem, item.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	member := seedUser(t, db, "alice@example.com", "alice", "password123")
	curator := seedUser(t, db, "curator@example.com", "curator", "password123")
	weaving := seedItem(t, db, curator, "Weaving Patterns", "andes", "colonial", ItemStatusPublished)
	songs := seedItem(t, db, curator, "Harvest Songs", "sahel", "modern", ItemStatusPublished)
	repo := NewFavoritesRepository(db)

	_, err := repo.Add(ctx, member.ID, weaving.ID)
	require.NoError(t, err)

	_, err = repo.Add(ctx, member.ID, songs.ID)
	require.NoError(t, err)

	// adding twice is a no-op
	_, err = repo.Add(ctx, member.ID, weaving.ID)
	require.NoError(t, err)

	records, err := repo.ListForUser(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	require.NotNil(t, records[0].Item)

	exists, err := repo.Exists(ctx, member.ID, weaving.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Remove(ctx, member.ID, weaving.ID))

	exists, err = repo.Exists(ctx, member.ID, weaving.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	records, err = repo.ListForUser(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	member := seedUser(t, db, "alice@example.com", "alice", "password123")
	bystander := seedUser(t, db, "bob@example.com", "bob", "password123")
	repo := NewNotificationsRepository(db)

	reply, err := repo.NotifyTx(ctx, db, &Notification{
		UserID: member.ID,
		Kind:   NotificationCommentReply,
		Title:  "New reply",
		Body:   "curator replied to your comment",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, reply.ID)

	_, err = repo.NotifyTx(ctx, db, &Notification{
		UserID:   member.ID,
		Kind:     NotificationSystem,
		Title:    "Welcome",
		Metadata: map[string]any{"source": "signup"},
	})
	require.NoError(t, err)

	_, err = repo.NotifyTx(ctx, db, &Notification{
		UserID: bystander.ID,
		Kind:   NotificationSystem,
		Title:  "Welcome",
	})
	require.NoError(t, err)

	t.Run("unread filter scoped to the user", func(t *testing.T) {
		_, total, err := repo.ListForUser(ctx, member.ID, true, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		count, err := repo.CountUnread(ctx, member.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("mark one read", func(t *testing.T) {
		require.NoError(t, repo.MarkRead(ctx, member.ID, reply.ID))

		records, total, err := repo.ListForUser(ctx, member.ID, true, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		for _, record := range records {
			assert.NotEqual(t, reply.ID, record.ID)
		}

		// marking again is a no-op
		require.NoError(t, repo.MarkRead(ctx, member.ID, reply.ID))
	})

	t.Run("mark read ignores other users' notifications", func(t *testing.T) {
		records, _, err := repo.ListForUser(ctx, bystander.ID, true, 0, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)

		require.NoError(t, repo.MarkRead(ctx, member.ID, records[0].ID))

		_, total, err := repo.ListForUser(ctx, bystander.ID, true, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("mark all read", func(t *testing.T) {
		affected, err := repo.MarkAllRead(ctx, member.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)

		_, total, err := repo.ListForUser(ctx, member.ID, true, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, total)

		// everything stays listed without the filter
		_, total, err = repo.ListForUser(ctx, member.ID, false, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("delete is owner scoped", func(t *testing.T) {
		records, _, err := repo.ListForUser(ctx, bystander.ID, false, 0, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)

		// wrong owner, nothing happens
		require.NoError(t, repo.DeleteForUser(ctx, member.ID, records[0].ID))

		_, total, err := repo.ListForUser(ctx, bystander.ID, false, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		require.NoError(t, repo.DeleteForUser(ctx, bystander.ID, records[0].ID))

		_, total, err = repo.ListForUser(ctx, bystander.ID, false, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})
}

func TestContributions(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	member := seedUser(t, db, "alice@example.com", "alice", "password123")
	reviewer := seedUser(t, db, "curator@example.com", "curator", "password123")
	item := seedItem(t, db, reviewer, "Weaving Patterns", "andes", "colonial", ItemStatusPublished)
	repo := NewContributionsRepository(db)

	submitted, err := repo.Create(ctx, &Contribution{
		ID:       uuid.New(),
		ItemID:   &item.ID,
		AuthorID: member.ID,
		Title:    "Correction to the weaving entry",
		Body:     "the pattern name is misspelled",
		Status:   ContributionSubmitted,
	})
	require.NoError(t, err)

	standalone, err := repo.Create(ctx, &Contribution{
		ID:       uuid.New(),
		AuthorID: member.ID,
		Title:    "New entry proposal",
		Body:     "a craft the catalog does not cover yet",
		Status:   ContributionSubmitted,
	})
	require.NoError(t, err)

	t.Run("pending queue loads relations", func(t *testing.T) {
		records, total, err := repo.ListPending(ctx, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, records, 2)

		for _, record := range records {
			require.NotNil(t, record.Author)
			if record.ID == submitted.ID {
				require.NotNil(t, record.Item)
				assert.Equal(t, item.ID, record.Item.ID)
			}
		}
	})

	t.Run("review approves and stamps the reviewer", func(t *testing.T) {
		_, err := repo.ReviewTx(ctx, db, submitted.ID, reviewer.ID, ContributionApproved, "merged into the entry")
		require.NoError(t, err)

		record, err := repo.GetByID(ctx, submitted.ID.String())
		require.NoError(t, err)
		assert.Equal(t, ContributionApproved, record.Status)
		require.NotNil(t, record.ReviewerID)
		assert.Equal(t, reviewer.ID, *record.ReviewerID)
		assert.Equal(t, "merged into the entry", record.ReviewNote)
		require.NotNil(t, record.ReviewedAt)

		_, total, err := repo.ListPending(ctx, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("author history includes reviewed work", func(t *testing.T) {
		records, err := repo.ListForAuthor(ctx, member.ID)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("rejection keeps the note", func(t *testing.T) {
		_, err := repo.ReviewTx(ctx, db, standalone.ID, reviewer.ID, ContributionRejected, "needs sources")
		require.NoError(t, err)

		record, err := repo.GetByID(ctx, standalone.ID.String())
		require.NoError(t, err)
		assert.Equal(t, ContributionRejected, record.Status)
		assert.Equal(t, "needs sources", record.ReviewNote)
	})
}
