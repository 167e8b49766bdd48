package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// errorFieldMaxLen bounds raw provider errors persisted on the search row.
const errorFieldMaxLen = 500

// Search represents one sourcing run. Rows are never hard-deleted by the
// core; completed searches stay for history and sharing.
type Search struct {
	ID     snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID  snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;index"`
	UserID snowflake.ID `json:"user_id" gorm:"not null"`

	Query    string `json:"query" gorm:"type:text;not null"`
	Name     string `json:"name" gorm:"type:text;not null"`
	Status   Status `json:"status" gorm:"type:text;not null;index"`
	Progress int    `json:"progress" gorm:"not null;default:0"`

	ParsedQuery    datatypes.JSON `json:"parsed_query,omitempty"`
	ParseError     string         `json:"parse_error,omitempty" gorm:"type:text"`
	ParseUpdatedAt *time.Time     `json:"parse_updated_at,omitempty"`
	SourcingError  string         `json:"sourcing_error,omitempty" gorm:"type:text"`
	ScoringError   string         `json:"scoring_error,omitempty" gorm:"type:text"`

	// Counters surfaced through the progress payload.
	CandidatesFound    int `json:"candidates_found" gorm:"not null;default:0"`
	CandidatesEnriched int `json:"candidates_enriched" gorm:"not null;default:0"`
	CandidatesScored   int `json:"candidates_scored" gorm:"not null;default:0"`
	CandidatesFailed   int `json:"candidates_failed" gorm:"not null;default:0"`
	PagesFailed        int `json:"pages_failed" gorm:"not null;default:0"`

	CreatedAt   time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName sets the database table name.
func (Search) TableName() string { return "searches" }

// SearchCandidate is a sourced, enriched profile persisted for a search.
type SearchCandidate struct {
	ID       snowflake.ID   `json:"id" gorm:"primaryKey"`
	SearchID snowflake.ID   `json:"search_id" gorm:"not null;index;uniqueIndex:ux_search_candidates_search_public,priority:1"`
	OrgID    snowflake.ID   `json:"organization_id" gorm:"column:org_id;not null;index"`
	PublicID string         `json:"public_id" gorm:"type:text;not null;uniqueIndex:ux_search_candidates_search_public,priority:2"`
	FullName string         `json:"full_name" gorm:"type:text"`
	Headline string         `json:"headline" gorm:"type:text"`
	PhotoURL string         `json:"photo_url" gorm:"type:text"`
	Location string         `json:"location" gorm:"type:text"`
	Profile  datatypes.JSON `json:"profile"`
	Revealed bool           `json:"revealed" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SearchCandidate) TableName() string { return "search_candidates" }

// CandidateScore holds the LLM evaluation for one (search, candidate) pair.
type CandidateScore struct {
	ID          snowflake.ID   `json:"id" gorm:"primaryKey"`
	SearchID    snowflake.ID   `json:"search_id" gorm:"not null;index"`
	CandidateID snowflake.ID   `json:"candidate_id" gorm:"not null;uniqueIndex"`
	OrgID       snowflake.ID   `json:"organization_id" gorm:"column:org_id;not null"`
	Score       int            `json:"score" gorm:"not null"`
	Pros        datatypes.JSON `json:"pros"`
	Cons        datatypes.JSON `json:"cons"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CandidateScore) TableName() string { return "candidate_scores" }

// TruncateError bounds a raw provider error for persistence on the search row.
func TruncateError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= errorFieldMaxLen {
		return msg
	}
	return string(runes[:errorFieldMaxLen])
}
