package heritage

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ContentController serves the editorial blog and its categories.
type ContentController struct {
	Logger Logger
	Repo   RepositoryManager
}

// RegisterContentRoutes mounts the blog surface. Reads are public;
// authoring requires a curator or admin.
func RegisterContentRoutes(api fiber.Router, c *ContentController, guard *Guard) {
	api.Get("/posts", guard.Optional(), c.List)
	api.Get("/posts/:slug", guard.Optional(), c.Show)
	api.Get("/categories", c.Categories)

	protect := []fiber.Handler{guard.Authenticated(), guard.Active()}
	api.Post("/posts", append(protect, c.Create)...)
	api.Patch("/posts/:id", append(protect, c.Update)...)
	api.Post("/posts/:id/publish", append(protect, c.Publish)...)
	api.Delete("/posts/:id", append(protect, c.Delete)...)
}

// List pages through posts. Drafts only show for curators.
func (h *ContentController) List(c *fiber.Ctx) error {
	filter := PostFilter{
		CategorySlug:  c.Query("category"),
		Search:        c.Query("q"),
		PublishedOnly: true,
		Limit:         c.QueryInt("limit", 25),
		Offset:        c.QueryInt("offset", 0),
	}

	if user, ok := CurrentUser(c); ok {
		if user.Role == RoleCurator || user.Role == RoleAdmin {
			filter.PublishedOnly = !c.QueryBool("drafts", false)
		}
	}

	records, total, err := h.Repo.BlogPosts().ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list posts")
	}

	return c.JSON(fiber.Map{
		"items":  records,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Show returns a single post by slug.
func (h *ContentController) Show(c *fiber.Ctx) error {
	record, err := h.Repo.BlogPosts().GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}

	if !record.Published {
		user, ok := CurrentUser(c)
		allowed := ok && (user.Role == RoleCurator || user.Role == RoleAdmin || user.ID == record.AuthorID)
		if !allowed {
			return goerrors.New("post not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
	}

	return c.JSON(record)
}

// Categories lists all blog categories.
func (h *ContentController) Categories(c *fiber.Ctx) error {
	records, err := h.Repo.Categories().ListWithCounts(c.UserContext())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list categories")
	}

	return c.JSON(fiber.Map{"items": records})
}

// PostPayload carries blog post fields for create and update.
type PostPayload struct {
	Title         string `form:"title" json:"title"`
	Excerpt       string `form:"excerpt" json:"excerpt"`
	Body          string `form:"body" json:"body"`
	CoverImageURL string `form:"cover_image_url" json:"cover_image_url"`
	CategoryID    string `form:"category_id" json:"category_id"`
}

// Validate will run validation rules
func (r PostPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 300)),
		validation.Field(&r.Body, validation.Required),
	)
}

// Create adds a draft post.
func (h *ContentController) Create(c *fiber.Ctx) error {
	user, err := requireCurator(c)
	if err != nil {
		return err
	}

	payload := new(PostPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse post payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	record := &BlogPost{
		ID:            uuid.New(),
		Title:         payload.Title,
		Slug:          Slugify(payload.Title),
		Excerpt:       payload.Excerpt,
		Body:          payload.Body,
		CoverImageURL: payload.CoverImageURL,
		AuthorID:      user.ID,
	}

	if payload.CategoryID != "" {
		categoryID, err := uuid.Parse(payload.CategoryID)
		if err != nil {
			return goerrors.New("invalid category id", goerrors.CategoryBadInput)
		}
		record.CategoryID = &categoryID
	}

	created, err := h.Repo.BlogPosts().Create(c.UserContext(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create post")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update edits a post's fields.
func (h *ContentController) Update(c *fiber.Ctx) error {
	if _, err := requireCurator(c); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid post id", goerrors.CategoryBadInput)
	}

	payload := new(PostPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse post payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	record := &BlogPost{
		ID:            id,
		Title:         payload.Title,
		Excerpt:       payload.Excerpt,
		Body:          payload.Body,
		CoverImageURL: payload.CoverImageURL,
	}

	updated, err := h.Repo.BlogPosts().Update(c.UserContext(), record)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// Publish makes a post publicly visible.
func (h *ContentController) Publish(c *fiber.Ctx) error {
	if _, err := requireCurator(c); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid post id", goerrors.CategoryBadInput)
	}

	record, err := h.Repo.BlogPosts().Publish(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(record)
}

// Delete removes a post. Admin only.
func (h *ContentController) Delete(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	if !user.IsAdmin() {
		return ErrAdminRequired
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid post id", goerrors.CategoryBadInput)
	}

	if err := h.Repo.BlogPosts().SoftDelete(c.UserContext(), id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete post")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
