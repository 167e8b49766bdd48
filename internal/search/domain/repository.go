package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, search *Search) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Search, error)
	ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit, offset int) ([]Search, error)
	// UpdateStage persists a stage transition: status, progress, counters and
	// any stage-tagged error fields present on the search.
	UpdateStage(ctx context.Context, db *gorm.DB, search *Search) error

	InsertCandidate(ctx context.Context, db *gorm.DB, candidate *SearchCandidate) error
	ListCandidates(ctx context.Context, db *gorm.DB, searchID snowflake.ID) ([]SearchCandidate, error)
	FindCandidate(ctx context.Context, db *gorm.DB, searchID, candidateID snowflake.ID) (*SearchCandidate, error)
	MarkCandidateRevealed(ctx context.Context, db *gorm.DB, candidateID snowflake.ID) error

	InsertScore(ctx context.Context, db *gorm.DB, score *CandidateScore) error
	ListScores(ctx context.Context, db *gorm.DB, searchID snowflake.ID) ([]CandidateScore, error)
}
