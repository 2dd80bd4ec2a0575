package heritage

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Category groups blog posts
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// BlogPost is an editorial article published alongside the catalog
type BlogPost struct {
	bun.BaseModel `bun:"table:blog_posts,alias:post"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Excerpt       string     `bun:"excerpt" json:"excerpt,omitempty"`
	Body          string     `bun:"body,notnull" json:"body,omitempty"`
	CoverImageURL string     `bun:"cover_image_url" json:"cover_image_url,omitempty"`
	CategoryID    *uuid.UUID `bun:"category_id,type:uuid" json:"category_id,omitempty"`
	Category      *Category  `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	AuthorID      uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Author        *User      `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Published     bool       `bun:"published,notnull,default:false" json:"published,omitempty"`
	PublishedAt   *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Event is a scheduled community happening: a workshop, exhibition,
// guided walk or festival tied to the catalog.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:evt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Location      string     `bun:"location" json:"location,omitempty"`
	StartsAt      time.Time  `bun:"starts_at,notnull" json:"starts_at,omitempty"`
	EndsAt        *time.Time `bun:"ends_at,nullzero" json:"ends_at,omitempty"`
	Capacity      int        `bun:"capacity,default:0" json:"capacity,omitempty"`
	OrganizerID   uuid.UUID  `bun:"organizer_id,notnull,type:uuid" json:"organizer_id,omitempty"`
	Organizer     *User      `bun:"rel:belongs-to,join:organizer_id=id" json:"organizer,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EventRegistration records a member's intent to attend an event
type EventRegistration struct {
	bun.BaseModel `bun:"table:event_registrations,alias:evtr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventID       uuid.UUID  `bun:"event_id,notnull,type:uuid" json:"event_id,omitempty"`
	Event         *Event     `bun:"rel:belongs-to,join:event_id=id" json:"event,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
