package heritage

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CommentTarget names the kind of record a comment hangs off
type CommentTarget = string

const (
	CommentTargetItem CommentTarget = "item"
	CommentTargetPost CommentTarget = "post"
)

// Comment is a member note on a catalog entry or blog post
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cmt"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	TargetKind    CommentTarget `bun:"target_kind,notnull" json:"target_kind,omitempty"`
	TargetID      uuid.UUID     `bun:"target_id,notnull,type:uuid" json:"target_id,omitempty"`
	AuthorID      uuid.UUID     `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Author        *User         `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Body          string        `bun:"body,notnull" json:"body,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time    `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// UserFavorite bookmarks a catalog entry for a member
type UserFavorite struct {
	bun.BaseModel `bun:"table:user_favorites,alias:fav"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID     `bun:"user_id,notnull,type:uuid,unique:user_item" json:"user_id,omitempty"`
	ItemID        uuid.UUID     `bun:"item_id,notnull,type:uuid,unique:user_item" json:"item_id,omitempty"`
	Item          *CulturalItem `bun:"rel:belongs-to,join:item_id=id" json:"item,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// NotificationKind discriminates notification payloads
type NotificationKind = string

const (
	NotificationCommentReply     NotificationKind = "comment_reply"
	NotificationContributionNews NotificationKind = "contribution_review"
	NotificationEventReminder    NotificationKind = "event_reminder"
	NotificationSystem           NotificationKind = "system"
)

// Notification is an in-app message for a user
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:ntf"`
	ID            uuid.UUID        `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID        `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Kind          NotificationKind `bun:"kind,notnull" json:"kind,omitempty"`
	Title         string           `bun:"title,notnull" json:"title,omitempty"`
	Body          string           `bun:"body" json:"body,omitempty"`
	Metadata      map[string]any   `bun:"metadata" json:"metadata,omitempty"`
	ReadAt        *time.Time       `bun:"read_at,nullzero" json:"read_at,omitempty"`
	CreatedAt     *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ContributionStatus walks submitted -> approved | rejected
type ContributionStatus = string

const (
	ContributionSubmitted ContributionStatus = "submitted"
	ContributionApproved  ContributionStatus = "approved"
	ContributionRejected  ContributionStatus = "rejected"
)

// Contribution is a member-submitted change or addition to the catalog
// awaiting curator review.
type Contribution struct {
	bun.BaseModel `bun:"table:contributions,alias:ctb"`
	ID            uuid.UUID          `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ItemID        *uuid.UUID         `bun:"item_id,type:uuid" json:"item_id,omitempty"`
	Item          *CulturalItem      `bun:"rel:belongs-to,join:item_id=id" json:"item,omitempty"`
	AuthorID      uuid.UUID          `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Author        *User              `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Title         string             `bun:"title,notnull" json:"title,omitempty"`
	Body          string             `bun:"body,notnull" json:"body,omitempty"`
	Status        ContributionStatus `bun:"status,notnull" json:"status,omitempty"`
	ReviewerID    *uuid.UUID         `bun:"reviewer_id,type:uuid" json:"reviewer_id,omitempty"`
	ReviewNote    string             `bun:"review_note" json:"review_note,omitempty"`
	ReviewedAt    *time.Time         `bun:"reviewed_at,nullzero" json:"reviewed_at,omitempty"`
	CreatedAt     *time.Time         `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time         `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time         `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
