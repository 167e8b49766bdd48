package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ShareLink grants read-only access to one search. The token is a capability
// URL segment; it is stored raw so the owning organization can copy the same
// link again later.
type ShareLink struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID     snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;index"`
	SearchID  snowflake.ID `json:"search_id" gorm:"not null;index"`
	Token     string       `json:"token" gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	RevokedAt *time.Time   `json:"revoked_at,omitempty"`
}

// TableName sets the database table name.
func (ShareLink) TableName() string { return "share_links" }

// SharedCandidate is the redacted candidate view served through a share
// link. The public profile identifier stays hidden until the owning
// organization has revealed the candidate.
type SharedCandidate struct {
	FullName string   `json:"full_name"`
	Headline string   `json:"headline"`
	PhotoURL string   `json:"photo_url"`
	Location string   `json:"location"`
	PublicID string   `json:"public_id,omitempty"`
	Revealed bool     `json:"revealed"`
	Score    *int     `json:"score,omitempty"`
	Pros     []string `json:"pros,omitempty"`
	Cons     []string `json:"cons,omitempty"`
}

// SharedView is the full read-only payload behind a share link.
type SharedView struct {
	Name        string            `json:"name"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Candidates  []SharedCandidate `json:"candidates"`
}

type Repository interface {
	FindActiveBySearchID(ctx context.Context, db *gorm.DB, searchID snowflake.ID) (*ShareLink, error)
	FindActiveByToken(ctx context.Context, db *gorm.DB, token string) (*ShareLink, error)
	Create(ctx context.Context, db *gorm.DB, link *ShareLink) error
}

// Service ensures each search has at most one active share link and resolves
// tokens into the redacted shared view.
type Service interface {
	EnsureForSearch(ctx context.Context, searchID, userID snowflake.ID) (string, error)
	Resolve(ctx context.Context, token string) (*SharedView, error)
}

var (
	ErrSearchNotCompleted = errors.New("search_not_completed")
	ErrNotFound           = errors.New("share_link_not_found")
)
