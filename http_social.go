package heritage

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SocialController serves comments, favorites, notifications and the
// contribution review queue.
type SocialController struct {
	Logger Logger
	Repo   RepositoryManager
}

// RegisterSocialRoutes mounts the member-interaction surface.
func RegisterSocialRoutes(api fiber.Router, c *SocialController, guard *Guard) {
	api.Get("/comments", c.ListComments)

	protect := []fiber.Handler{guard.Authenticated(), guard.Active()}
	api.Post("/comments", append(protect, c.CreateComment)...)
	api.Delete("/comments/:id", append(protect, c.DeleteComment)...)

	api.Get("/favorites", append(protect, c.ListFavorites)...)
	api.Get("/favorites/:itemID", append(protect, c.CheckFavorite)...)
	api.Put("/favorites/:itemID", append(protect, c.AddFavorite)...)
	api.Delete("/favorites/:itemID", append(protect, c.RemoveFavorite)...)

	api.Get("/notifications", append(protect, c.ListNotifications)...)
	api.Get("/notifications/unread-count", append(protect, c.UnreadNotificationCount)...)
	api.Post("/notifications/:id/read", append(protect, c.MarkNotificationRead)...)
	api.Post("/notifications/read-all", append(protect, c.MarkAllNotificationsRead)...)
	api.Delete("/notifications/:id", append(protect, c.DeleteNotification)...)

	api.Post("/contributions", append(protect, c.SubmitContribution)...)
	api.Get("/contributions/mine", append(protect, c.MyContributions)...)
	api.Get("/contributions/pending", append(protect, c.PendingContributions)...)
	api.Post("/contributions/:id/review", append(protect, c.ReviewContribution)...)
}

// ListComments returns the thread for a target record.
func (h *SocialController) ListComments(c *fiber.Ctx) error {
	kind := c.Query("target_kind")
	if kind != CommentTargetItem && kind != CommentTargetPost {
		return goerrors.New("target_kind must be item or post", goerrors.CategoryBadInput)
	}

	targetID, err := uuid.Parse(c.Query("target_id"))
	if err != nil {
		return goerrors.New("invalid target_id", goerrors.CategoryBadInput)
	}

	records, total, err := h.Repo.Comments().ListForTarget(
		c.UserContext(), kind, targetID,
		c.QueryInt("limit", 50), c.QueryInt("offset", 0),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list comments")
	}

	return c.JSON(fiber.Map{"items": records, "total": total})
}

// CommentPayload is the comment body
type CommentPayload struct {
	TargetKind CommentTarget `form:"target_kind" json:"target_kind"`
	TargetID   string        `form:"target_id" json:"target_id"`
	Body       string        `form:"body" json:"body"`
}

// Validate will run validation rules
func (r CommentPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TargetKind, validation.Required, validation.In(
			CommentTargetItem, CommentTargetPost,
		)),
		validation.Field(&r.TargetID, validation.Required),
		validation.Field(&r.Body, validation.Required, validation.Length(1, 4000)),
	)
}

// CreateComment posts a comment on an item or blog post.
func (h *SocialController) CreateComment(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	payload := new(CommentPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse comment payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	targetID, err := uuid.Parse(payload.TargetID)
	if err != nil {
		return goerrors.New("invalid target_id", goerrors.CategoryBadInput)
	}

	record := &Comment{
		ID:         uuid.New(),
		TargetKind: payload.TargetKind,
		TargetID:   targetID,
		AuthorID:   user.ID,
		Body:       payload.Body,
	}

	created, err := h.Repo.Comments().Create(c.UserContext(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create comment")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeleteComment removes the caller's own comment; admins can remove
// anyone's.
func (h *SocialController) DeleteComment(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid comment id", goerrors.CategoryBadInput)
	}

	record, err := h.Repo.Comments().GetByID(c.UserContext(), id.String())
	if err != nil {
		return err
	}

	if record.AuthorID != user.ID && !user.IsAdmin() {
		return goerrors.New("you can only delete your own comments", goerrors.CategoryAuthz).
			WithCode(goerrors.CodeForbidden)
	}

	if err := h.Repo.Comments().DeleteByID(c.UserContext(), id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete comment")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListFavorites returns the caller's bookmarks.
func (h *SocialController) ListFavorites(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	records, err := h.Repo.Favorites().ListForUser(c.UserContext(), user.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list favorites")
	}

	return c.JSON(fiber.Map{"items": records})
}

// CheckFavorite reports whether the caller bookmarked an item.
func (h *SocialController) CheckFavorite(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	itemID, err := uuid.Parse(c.Params("itemID"))
	if err != nil {
		return goerrors.New("invalid item id", goerrors.CategoryBadInput)
	}

	exists, err := h.Repo.Favorites().Exists(c.UserContext(), user.ID, itemID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check favorite")
	}

	return c.JSON(fiber.Map{"favorited": exists})
}

// AddFavorite bookmarks an item. Bookmarking twice is a conflict.
func (h *SocialController) AddFavorite(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	itemID, err := uuid.Parse(c.Params("itemID"))
	if err != nil {
		return goerrors.New("invalid item id", goerrors.CategoryBadInput)
	}

	exists, err := h.Repo.Favorites().Exists(c.UserContext(), user.ID, itemID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check favorite")
	}

	if exists {
		return goerrors.New("item is already a favorite", goerrors.CategoryConflict).
			WithCode(goerrors.CodeConflict)
	}

	record, err := h.Repo.Favorites().Add(c.UserContext(), user.ID, itemID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to add favorite")
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// RemoveFavorite drops a bookmark.
func (h *SocialController) RemoveFavorite(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	itemID, err := uuid.Parse(c.Params("itemID"))
	if err != nil {
		return goerrors.New("invalid item id", goerrors.CategoryBadInput)
	}

	if err := h.Repo.Favorites().Remove(c.UserContext(), user.ID, itemID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove favorite")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListNotifications pages the caller's notifications.
func (h *SocialController) ListNotifications(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	records, total, err := h.Repo.Notifications().ListForUser(
		c.UserContext(), user.ID,
		c.QueryBool("unread", false),
		c.QueryInt("limit", 50), c.QueryInt("offset", 0),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list notifications")
	}

	return c.JSON(fiber.Map{"items": records, "total": total})
}

// UnreadNotificationCount returns the size of the caller's unread pile,
// cheap enough for a badge poll.
func (h *SocialController) UnreadNotificationCount(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	count, err := h.Repo.Notifications().CountUnread(c.UserContext(), user.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count notifications")
	}

	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationRead flags one notification as read.
func (h *SocialController) MarkNotificationRead(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid notification id", goerrors.CategoryBadInput)
	}

	if err := h.Repo.Notifications().MarkRead(c.UserContext(), user.ID, id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark notification read")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead clears the caller's unread pile.
func (h *SocialController) MarkAllNotificationsRead(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	n, err := h.Repo.Notifications().MarkAllRead(c.UserContext(), user.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark notifications read")
	}

	return c.JSON(fiber.Map{"marked": n})
}

// DeleteNotification removes one of the caller's notifications.
func (h *SocialController) DeleteNotification(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid notification id", goerrors.CategoryBadInput)
	}

	if err := h.Repo.Notifications().DeleteForUser(c.UserContext(), user.ID, id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete notification")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ContributionPayload is a member-submitted catalog change.
type ContributionPayload struct {
	ItemID string `form:"item_id" json:"item_id"`
	Title  string `form:"title" json:"title"`
	Body   string `form:"body" json:"body"`
}

// Validate will run validation rules
func (r ContributionPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 300)),
		validation.Field(&r.Body, validation.Required, validation.Length(1, 20000)),
	)
}

// SubmitContribution queues a proposal for curator review.
func (h *SocialController) SubmitContribution(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	payload := new(ContributionPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse contribution payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	record := &Contribution{
		ID:       uuid.New(),
		AuthorID: user.ID,
		Title:    payload.Title,
		Body:     payload.Body,
		Status:   ContributionSubmitted,
	}

	if payload.ItemID != "" {
		itemID, err := uuid.Parse(payload.ItemID)
		if err != nil {
			return goerrors.New("invalid item_id", goerrors.CategoryBadInput)
		}
		record.ItemID = &itemID
	}

	created, err := h.Repo.Contributions().Create(c.UserContext(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not store contribution")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// MyContributions lists the caller's submissions and their review
// outcomes.
func (h *SocialController) MyContributions(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	records, err := h.Repo.Contributions().ListForAuthor(c.UserContext(), user.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list contributions")
	}

	return c.JSON(fiber.Map{"items": records})
}

// PendingContributions lists the review queue for curators.
func (h *SocialController) PendingContributions(c *fiber.Ctx) error {
	if _, err := requireCurator(c); err != nil {
		return err
	}

	records, total, err := h.Repo.Contributions().ListPending(
		c.UserContext(),
		c.QueryInt("limit", 25), c.QueryInt("offset", 0),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list pending contributions")
	}

	return c.JSON(fiber.Map{"items": records, "total": total})
}

// ReviewPayload carries a curator verdict.
type ReviewPayload struct {
	Status ContributionStatus `form:"status" json:"status"`
	Note   string             `form:"note" json:"note"`
}

// Validate will run validation rules
func (r ReviewPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			ContributionApproved, ContributionRejected,
		)),
		validation.Field(&r.Note, validation.Length(0, 2000)),
	)
}

// ReviewContribution records a verdict and notifies the author in the
// same transaction.
func (h *SocialController) ReviewContribution(c *fiber.Ctx) error {
	reviewer, err := requireCurator(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid contribution id", goerrors.CategoryBadInput)
	}

	payload := new(ReviewPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse review payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	var reviewed *Contribution

	err = h.Repo.RunInTx(c.UserContext(), nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := h.Repo.Contributions().GetByIDTx(ctx, tx, id.String())
		if err != nil {
			return err
		}

		if record.Status != ContributionSubmitted {
			return goerrors.New("contribution has already been reviewed", goerrors.CategoryConflict).
				WithCode(goerrors.CodeConflict)
		}

		reviewed, err = h.Repo.Contributions().ReviewTx(ctx, tx, id, reviewer.ID, payload.Status, payload.Note)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store review")
		}

		notification := &Notification{
			UserID: record.AuthorID,
			Kind:   NotificationContributionNews,
			Title:  "Your contribution was reviewed",
			Body:   payload.Note,
			Metadata: map[string]any{
				"contribution_id": id.String(),
				"status":          payload.Status,
			},
		}

		if _, err := h.Repo.Notifications().NotifyTx(ctx, tx, notification); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to notify author")
		}

		return nil
	})

	if err != nil {
		return err
	}

	return c.JSON(reviewed)
}
