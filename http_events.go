package heritage

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// EventsController serves community events and attendance.
type EventsController struct {
	Logger Logger
	Repo   RepositoryManager
}

// RegisterEventRoutes mounts the events surface. Listings are public;
// creating events takes a curator, attending takes any active member.
func RegisterEventRoutes(api fiber.Router, c *EventsController, guard *Guard) {
	api.Get("/events", c.List)
	api.Get("/events/:slug", c.Show)

	protect := []fiber.Handler{guard.Authenticated(), guard.Active()}
	api.Post("/events", append(protect, c.Create)...)
	api.Patch("/events/:id", append(protect, c.Update)...)
	api.Delete("/events/:id", append(protect, c.Delete)...)
	api.Post("/events/:id/register", append(protect, c.Attend)...)
	api.Delete("/events/:id/register", append(protect, c.CancelAttendance)...)
}

// List pages through events, upcoming first.
func (h *EventsController) List(c *fiber.Ctx) error {
	filter := EventFilter{
		UpcomingOnly: c.QueryBool("upcoming", true),
		Location:     c.Query("location"),
		Limit:        c.QueryInt("limit", 25),
		Offset:       c.QueryInt("offset", 0),
	}

	records, total, err := h.Repo.Events().ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list events")
	}

	return c.JSON(fiber.Map{
		"items":  records,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Show returns one event with its attendee count.
func (h *EventsController) Show(c *fiber.Ctx) error {
	record, err := h.Repo.Events().GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}

	attendees, err := h.Repo.Events().CountAttendees(c.UserContext(), record.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count attendees")
	}

	return c.JSON(fiber.Map{
		"event":     record,
		"attendees": attendees,
	})
}

// EventPayload carries event fields.
type EventPayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Location    string `form:"location" json:"location"`
	StartsAt    string `form:"starts_at" json:"starts_at"`
	EndsAt      string `form:"ends_at" json:"ends_at"`
	Capacity    int    `form:"capacity" json:"capacity"`
}

// Validate will run validation rules
func (r EventPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 300)),
		validation.Field(&r.StartsAt, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&r.EndsAt, validation.Date(time.RFC3339)),
		validation.Field(&r.Capacity, validation.Min(0)),
	)
}

// Create schedules a new event.
func (h *EventsController) Create(c *fiber.Ctx) error {
	user, err := requireCurator(c)
	if err != nil {
		return err
	}

	payload := new(EventPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse event payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	startsAt, err := time.Parse(time.RFC3339, payload.StartsAt)
	if err != nil {
		return goerrors.New("invalid starts_at timestamp", goerrors.CategoryBadInput)
	}

	record := &Event{
		ID:          uuid.New(),
		Title:       payload.Title,
		Slug:        Slugify(payload.Title),
		Description: payload.Description,
		Location:    payload.Location,
		StartsAt:    startsAt,
		Capacity:    payload.Capacity,
		OrganizerID: user.ID,
	}

	if payload.EndsAt != "" {
		endsAt, err := time.Parse(time.RFC3339, payload.EndsAt)
		if err != nil {
			return goerrors.New("invalid ends_at timestamp", goerrors.CategoryBadInput)
		}
		record.EndsAt = &endsAt
	}

	created, err := h.Repo.Events().Create(c.UserContext(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create event")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update edits an event's details.
func (h *EventsController) Update(c *fiber.Ctx) error {
	if _, err := requireCurator(c); err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid event id", goerrors.CategoryBadInput)
	}

	payload := new(EventPayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse event payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	startsAt, err := time.Parse(time.RFC3339, payload.StartsAt)
	if err != nil {
		return goerrors.New("invalid starts_at timestamp", goerrors.CategoryBadInput)
	}

	record := &Event{
		ID:          id,
		Title:       payload.Title,
		Description: payload.Description,
		Location:    payload.Location,
		StartsAt:    startsAt,
		Capacity:    payload.Capacity,
	}

	if payload.EndsAt != "" {
		endsAt, err := time.Parse(time.RFC3339, payload.EndsAt)
		if err != nil {
			return goerrors.New("invalid ends_at timestamp", goerrors.CategoryBadInput)
		}
		record.EndsAt = &endsAt
	}

	updated, err := h.Repo.Events().Update(c.UserContext(), record)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// Delete cancels an event outright. Admin only.
func (h *EventsController) Delete(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	if !user.IsAdmin() {
		return ErrAdminRequired
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid event id", goerrors.CategoryBadInput)
	}

	if err := h.Repo.Events().SoftDelete(c.UserContext(), id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete event")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Attend registers the caller for an event, capacity permitting.
func (h *EventsController) Attend(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid event id", goerrors.CategoryBadInput)
	}

	event, err := h.Repo.Events().GetByID(c.UserContext(), id.String())
	if err != nil {
		return err
	}

	if event.Capacity > 0 {
		attendees, err := h.Repo.Events().CountAttendees(c.UserContext(), id)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count attendees")
		}
		if attendees >= event.Capacity {
			return goerrors.New("event is at capacity", goerrors.CategoryConflict).
				WithCode(goerrors.CodeConflict).
				WithTextCode("EVENT_FULL")
		}
	}

	record, err := h.Repo.Events().RegisterAttendee(c.UserContext(), id, user.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to register attendance")
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// CancelAttendance withdraws the caller's registration.
func (h *EventsController) CancelAttendance(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid event id", goerrors.CategoryBadInput)
	}

	if err := h.Repo.Events().CancelRegistration(c.UserContext(), id, user.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to cancel attendance")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
