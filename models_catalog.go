package heritage

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ItemStatus is the publication state of a catalog entry
type ItemStatus = string

const (
	ItemStatusDraft     ItemStatus = "draft"
	ItemStatusPublished ItemStatus = "published"
	ItemStatusArchived  ItemStatus = "archived"
)

// CulturalItem is a catalog entry: a monument, craft, recipe, song,
// dialect record or any other piece of documented heritage.
type CulturalItem struct {
	bun.BaseModel `bun:"table:cultural_items,alias:itm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Summary       string     `bun:"summary" json:"summary,omitempty"`
	Body          string     `bun:"body" json:"body,omitempty"`
	Region        string     `bun:"region" json:"region,omitempty"`
	Period        string     `bun:"period" json:"period,omitempty"`
	Status        ItemStatus `bun:"status,notnull" json:"status,omitempty"`
	AuthorID      uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Author        *User      `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Tags          []*Tag     `bun:"m2m:item_tags,join:Item=Tag" json:"tags,omitempty"`
	Media         []*Media   `bun:"rel:has-many,join:id=item_id" json:"media,omitempty"`
	ViewCount     int64      `bun:"view_count,default:0" json:"view_count,omitempty"`
	PublishedAt   *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Tag labels catalog entries for discovery
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:tag"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ItemTag is the join table between catalog entries and tags
type ItemTag struct {
	bun.BaseModel `bun:"table:item_tags,alias:itag"`
	ItemID        uuid.UUID     `bun:"item_id,pk,type:uuid" json:"item_id,omitempty"`
	Item          *CulturalItem `bun:"rel:belongs-to,join:item_id=id" json:"item,omitempty"`
	TagID         uuid.UUID     `bun:"tag_id,pk,type:uuid" json:"tag_id,omitempty"`
	Tag           *Tag          `bun:"rel:belongs-to,join:tag_id=id" json:"tag,omitempty"`
}

// MediaKind discriminates stored media attachments
type MediaKind = string

const (
	MediaKindImage    MediaKind = "image"
	MediaKindAudio    MediaKind = "audio"
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
)

// Media is a file attached to a catalog entry. Files live in object
// storage; we keep the URL and enough metadata to render a gallery.
type Media struct {
	bun.BaseModel `bun:"table:media,alias:med"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ItemID        uuid.UUID  `bun:"item_id,notnull,type:uuid" json:"item_id,omitempty"`
	Kind          MediaKind  `bun:"kind,notnull" json:"kind,omitempty"`
	URL           string     `bun:"url,notnull" json:"url,omitempty"`
	Caption       string     `bun:"caption" json:"caption,omitempty"`
	Credit        string     `bun:"credit" json:"credit,omitempty"`
	Position      int        `bun:"position,default:0" json:"position,omitempty"`
	UploaderID    uuid.UUID  `bun:"uploader_id,notnull,type:uuid" json:"uploader_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
