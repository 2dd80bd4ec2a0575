package heritage

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EventFilter narrows event listings. Zero values mean "any".
type EventFilter struct {
	UpcomingOnly bool
	Location     string
	Limit        int
	Offset       int
}

type Events interface {
	repository.Repository[*Event]

	ListWithFilter(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error

	RegisterAttendee(ctx context.Context, eventID, userID uuid.UUID) (*EventRegistration, error)
	CancelRegistration(ctx context.Context, eventID, userID uuid.UUID) error
	CountAttendees(ctx context.Context, eventID uuid.UUID) (int, error)
}

type events struct {
	repository.Repository[*Event]
	db *bun.DB
}

var _ Events = (*events)(nil)

func NewEventsRepository(db *bun.DB) Events {
	repo := repository.NewRepository[*Event](db, repository.ModelHandlers[*Event]{
		NewRecord: func() *Event { return &Event{} },
		GetID: func(m *Event) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Event, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})

	return &events{
		Repository: repo,
		db:         db,
	}
}

func (r *events) ListWithFilter(ctx context.Context, filter EventFilter) ([]*Event, int, error) {
	records := []*Event{}

	q := r.db.NewSelect().
		Model(&records).
		Relation("Organizer")

	if filter.UpcomingOnly {
		q = q.Where("?TableAlias.starts_at >= ?", time.Now())
	}

	if filter.Location != "" {
		q = q.Where("?TableAlias.location = ?", filter.Location)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	total, err := q.
		Order("evt.starts_at ASC").
		Limit(limit).
		Offset(filter.Offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *events) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	record := &Event{}

	err := r.db.NewSelect().
		Model(record).
		Relation("Organizer").
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

// SoftDelete stamps deleted_at; registrations stay for the record.
func (r *events) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Event)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

func (r *events) RegisterAttendee(ctx context.Context, eventID, userID uuid.UUID) (*EventRegistration, error) {
	record := &EventRegistration{
		ID:      uuid.New(),
		EventID: eventID,
		UserID:  userID,
	}

	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (event_id, user_id) DO NOTHING").
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *events) CancelRegistration(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*EventRegistration)(nil)).
		Where("?TableAlias.event_id = ?", eventID).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)

	return err
}

func (r *events) CountAttendees(ctx context.Context, eventID uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*EventRegistration)(nil)).
		Where("?TableAlias.event_id = ?", eventID).
		Count(ctx)
}
