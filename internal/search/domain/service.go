package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Create persists a new pending search for the raw query text.
	Create(ctx context.Context, req CreateRequest) (*Search, error)
	// Get loads a search with membership enforcement: ErrNotFound when the id
	// does not exist, organization.ErrNotMember when the requester does not
	// belong to the owning organization.
	Get(ctx context.Context, searchID, userID snowflake.ID) (*Search, error)
	// Progress returns the authoritative progress payload for a search.
	Progress(ctx context.Context, searchID, userID snowflake.ID) (*ProgressResponse, error)
	List(ctx context.Context, orgID snowflake.ID, limit, offset int) ([]Search, error)
	Detail(ctx context.Context, searchID, userID snowflake.ID) (*DetailResponse, error)
	// ParsedQueryOf re-validates and returns the cached parse response.
	// Fails closed with ErrMissingParseResponse when absent or invalid.
	ParsedQueryOf(search *Search) (*ParsedQuery, error)
	// Query loads the search with the same authorization as Get and returns
	// its re-validated cached parse.
	Query(ctx context.Context, searchID, userID snowflake.ID) (*ParsedQuery, error)
}

type CreateRequest struct {
	OrganizationID snowflake.ID
	UserID         snowflake.ID
	Query          string
}

// ProgressResponse is the pull-side progress payload. The SSE channel pushes
// the same shape; the pull endpoint is authoritative.
type ProgressResponse struct {
	SearchID           string     `json:"search_id"`
	Name               string     `json:"name"`
	Status             Status     `json:"status"`
	Progress           int        `json:"progress"`
	CandidatesFound    int        `json:"candidates_found"`
	CandidatesEnriched int        `json:"candidates_enriched"`
	CandidatesScored   int        `json:"candidates_scored"`
	CandidatesFailed   int        `json:"candidates_failed"`
	PagesFailed        int        `json:"pages_failed"`
	ParseError         string     `json:"parse_error,omitempty"`
	SourcingError      string     `json:"sourcing_error,omitempty"`
	ScoringError       string     `json:"scoring_error,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

type DetailResponse struct {
	Search     *Search              `json:"search"`
	Candidates []CandidateWithScore `json:"candidates"`
}

type CandidateWithScore struct {
	Candidate SearchCandidate `json:"candidate"`
	Score     *CandidateScore `json:"score,omitempty"`
}

var (
	ErrInvalidQuery           = errors.New("invalid_query")
	ErrNotFound               = errors.New("search_not_found")
	ErrCandidateNotFound      = errors.New("candidate_not_found")
	ErrMissingParseResponse   = errors.New("missing_cached_parse_response")
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
)
