package heritage

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CatalogController serves the cultural item catalog, its tags and
// media attachments.
type CatalogController struct {
	Logger Logger
	Repo   RepositoryManager
}

// RegisterCatalogRoutes mounts the catalog surface. Reads are public
// with an optional credential for personalization; writes require a
// curator or admin.
func RegisterCatalogRoutes(api fiber.Router, c *CatalogController, guard *Guard) {
	api.Get("/items", guard.Optional(), c.List)
	api.Get("/items/:slug", guard.Optional(), c.Show)
	api.Get("/tags", c.Tags)

	protect := []fiber.Handler{guard.Authenticated(), guard.Active()}
	api.Post("/items", append(protect, c.Create)...)
	api.Patch("/items/:id", append(protect, c.Update)...)
	api.Post("/items/:id/publish", append(protect, c.Publish)...)
	api.Post("/items/:id/archive", append(protect, c.Archive)...)
	api.Post("/items/:id/media", append(protect, c.AddMedia)...)
	api.Delete("/items/:id/media/:mediaID", append(protect, c.RemoveMedia)...)
	api.Delete("/items/:id", append(protect, c.Delete)...)
}

// requireCurator gates catalog writes to curators and admins.
func requireCurator(c *fiber.Ctx) (*User, error) {
	user, ok := CurrentUser(c)
	if !ok {
		return nil, ErrMissingBearerToken
	}

	if user.Role != RoleCurator && user.Role != RoleAdmin {
		return nil, goerrors.New("curator privileges required", goerrors.CategoryAuthz).
			WithCode(goerrors.CodeForbidden)
	}

	return user, nil
}

// ItemDTO is the list/detail projection of a catalog entry.
type ItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary,omitempty"`
	Body        string     `json:"body,omitempty"`
	Region      string     `json:"region,omitempty"`
	Period      string     `json:"period,omitempty"`
	Status      ItemStatus `json:"status"`
	Author      *UserDTO   `json:"author,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Media       []*Media   `json:"media,omitempty"`
	ViewCount   int64      `json:"view_count"`
	IsFavorite  bool       `json:"is_favorite,omitempty"`
	PublishedAt string     `json:"published_at,omitempty"`
}

func NewItemDTO(item *CulturalItem) ItemDTO {
	dto := ItemDTO{
		ID:        item.ID,
		Title:     item.Title,
		Slug:      item.Slug,
		Summary:   item.Summary,
		Body:      item.Body,
		Region:    item.Region,
		Period:    item.Period,
		Status:    item.Status,
		Media:     item.Media,
		ViewCount: item.ViewCount,
	}

	if item.Author != nil {
		author := NewUserDTO(item.Author)
		dto.Author = &author
	}

	for _, tag := range item.Tags {
		dto.Tags = append(dto.Tags, tag.Slug)
	}

	if item.PublishedAt != nil {
		dto.PublishedAt = item.PublishedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	return dto
}

// List pages through the catalog. Anonymous callers only see
// published entries; curators can filter by status.
func (h *CatalogController) List(c *fiber.Ctx) error {
	filter := ItemFilter{
		Region:  c.Query("region"),
		Period:  c.Query("period"),
		TagSlug: c.Query("tag"),
		Search:  c.Query("q"),
		Status:  ItemStatusPublished,
		Limit:   c.QueryInt("limit", 25),
		Offset:  c.QueryInt("offset", 0),
	}

	if user, ok := CurrentUser(c); ok {
		if user.Role == RoleCurator || user.Role == RoleAdmin {
			if status := c.Query("status"); status != "" {
				filter.Status = status
			}
		}
	}

	records, total, err := h.Repo.CulturalItems().ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list catalog items")
	}

	items := make([]ItemDTO, 0, len(records))
	for _, record := range records {
		items = append(items, NewItemDTO(record))
	}

	return c.JSON(fiber.Map{
		"items":  items,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Show returns one catalog entry by slug and bumps its view counter.
// Unpublished entries are only visible to curators and their author.
func (h *CatalogController) Show(c *fiber.Ctx) error {
	record, err := h.Repo.CulturalItems().GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}

	if record.Status != ItemStatusPublished {
		user, ok := CurrentUser(c)
		allowed := ok && (user.Role == RoleCurator || user.Role == RoleAdmin || user.ID == record.AuthorID)
		if !allowed {
			return goerrors.New("item not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
	}

	if err := h.Repo.CulturalItems().IncrementViews(c.UserContext(), record.ID); err != nil {
		h.Logger.Error("failed to bump view count", "item_id", record.ID.String(), "error", err)
	}

	dto := NewItemDTO(record)

	if user, ok := CurrentUser(c); ok {
		fav, err := h.Repo.Favorites().Exists(c.UserContext(), user.ID, record.ID)
		if err == nil {
			dto.IsFavorite = fav
		}
	}

	return c.JSON(dto)
}

// Tags lists every tag in use.
func (h *CatalogController) Tags(c *fiber.Ctx) error {
	records, err := h.Repo.Tags().ListAll(c.UserContext())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list tags")
	}

	return c.JSON(fiber.Map{"items": records})
}

// ItemPayload carries catalog entry fields for create and update.
type ItemPayload struct {
	Title   string   `form:"title" json:"title"`
	Summary string   `form:"summary" json:"summary"`
	Body    string   `form:"body" json:"body"`
	Region  string   `form:"region" json:"region"`
	Period  string   `form:"period" json:"period"`
	Tags    []string `form:"tags" json:"tags"`
}

// Validate will run validation rules
func (r ItemPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 300)),
		validation.Field(&r.Summary, validation.Length(0, 1000)),
	)
}

// Create adds a draft catalog entry.
func (h *CatalogController) Create(c *fiber.Ctx) error {
	user, err := requireCurator(c)
	if err != nil {
		return err
	}

	payload := new(ItemPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse item payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	record := &CulturalItem{
		ID:       uuid.New(),
		Title:    payload.Title,
		Slug:     Slugify(payload.Title),
		Summary:  payload.Summary,
		Body:     payload.Body,
		Region:   payload.Region,
		Period:   payload.Period,
		Status:   ItemStatusDraft,
		AuthorID: user.ID,
	}

	err = h.Repo.RunInTx(c.UserContext(), nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := h.Repo.CulturalItems().CreateTx(ctx, tx, record)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create item")
		}
		record = created

		for _, name := range payload.Tags {
			tag, err := h.Repo.Tags().GetOrCreateByNameTx(ctx, tx, name)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve tag")
			}
			if err := h.Repo.CulturalItems().AttachTagTx(ctx, tx, record.ID, tag.ID); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to attach tag")
			}
		}

		return nil
	})

	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(NewItemDTO(record))
}

// Update edits an existing entry's fields.
func (h *CatalogController) Update(c *fiber.Ctx) error {
	if _, err := requireCurator(c); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid item id", goerrors.CategoryBadInput)
	}

	payload := new(ItemPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse item payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	record := &CulturalItem{
		ID:      id,
		Title:   payload.Title,
		Summary: payload.Summary,
		Body:    payload.Body,
		Region:  payload.Region,
		Period:  payload.Period,
	}

	updated, err := h.Repo.CulturalItems().Update(c.UserContext(), record)
	if err != nil {
		return err
	}

	return c.JSON(NewItemDTO(updated))
}

// Publish makes an entry publicly visible.
func (h *CatalogController) Publish(c *fiber.Ctx) error {
	if _, err := requireCurator(c); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid item id", goerrors.CategoryBadInput)
	}

	record, err := h.Repo.CulturalItems().Publish(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(NewItemDTO(record))
}

// Archive pulls an entry from public view without deleting it.
func (h *CatalogController) Archive(c *fiber.Ctx) error {
	if _, err := requireCurator(c); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid item id", goerrors.CategoryBadInput)
	}

	record, err := h.Repo.CulturalItems().Archive(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(NewItemDTO(record))
}

// Delete removes an entry entirely. Archiving is the usual path; this
// one is reserved for admins.
func (h *CatalogController) Delete(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	if !user.IsAdmin() {
		return ErrAdminRequired
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid item id", goerrors.CategoryBadInput)
	}

	if err := h.Repo.CulturalItems().SoftDelete(c.UserContext(), id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete item")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// MediaPayload describes an attachment already uploaded to storage.
type MediaPayload struct {
	Kind     MediaKind `form:"kind" json:"kind"`
	URL      string    `form:"url" json:"url"`
	Caption  string    `form:"caption" json:"caption"`
	Credit   string    `form:"credit" json:"credit"`
	Position int       `form:"position" json:"position"`
}

// Validate will run validation rules
func (r MediaPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.In(
			MediaKindImage, MediaKindAudio, MediaKindVideo, MediaKindDocument,
		)),
		validation.Field(&r.URL, validation.Required, is.URL),
	)
}

// AddMedia attaches a media record to an entry.
func (h *CatalogController) AddMedia(c *fiber.Ctx) error {
	user, err := requireCurator(c)
	if err != nil {
		return err
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid item id", goerrors.CategoryBadInput)
	}

	payload := new(MediaPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse media payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	record := &Media{
		ID:         uuid.New(),
		ItemID:     itemID,
		Kind:       payload.Kind,
		URL:        payload.URL,
		Caption:    payload.Caption,
		Credit:     payload.Credit,
		Position:   payload.Position,
		UploaderID: user.ID,
	}

	created, err := h.Repo.Media().Create(c.UserContext(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store media record")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// RemoveMedia detaches a media record.
func (h *CatalogController) RemoveMedia(c *fiber.Ctx) error {
	if _, err := requireCurator(c); err != nil {
		return err
	}

	mediaID, err := uuid.Parse(c.Params("mediaID"))
	if err != nil {
		return goerrors.New("invalid media id", goerrors.CategoryBadInput)
	}

	if err := h.Repo.Media().DeleteByID(c.UserContext(), mediaID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete media record")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
