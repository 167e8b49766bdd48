package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() searchdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, search *searchdomain.Search) error {
	return db.WithContext(ctx).Create(search).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*searchdomain.Search, error) {
	var search searchdomain.Search
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&search).Error
	if err != nil {
		return nil, err
	}
	if search.ID == 0 {
		return nil, nil
	}
	return &search, nil
}

func (r *repo) ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit, offset int) ([]searchdomain.Search, error) {
	var searches []searchdomain.Search
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&searches).Error
	if err != nil {
		return nil, err
	}
	return searches, nil
}

func (r *repo) UpdateStage(ctx context.Context, db *gorm.DB, search *searchdomain.Search) error {
	return db.WithContext(ctx).Exec(
		`UPDATE searches
		 SET name = ?, status = ?, progress = ?, parsed_query = ?,
		     parse_error = ?, parse_updated_at = ?, sourcing_error = ?, scoring_error = ?,
		     candidates_found = ?, candidates_enriched = ?, candidates_scored = ?, candidates_failed = ?,
		     pages_failed = ?, updated_at = ?, completed_at = ?
		 WHERE id = ?`,
		search.Name,
		search.Status,
		search.Progress,
		search.ParsedQuery,
		search.ParseError,
		search.ParseUpdatedAt,
		search.SourcingError,
		search.ScoringError,
		search.CandidatesFound,
		search.CandidatesEnriched,
		search.CandidatesScored,
		search.CandidatesFailed,
		search.PagesFailed,
		search.UpdatedAt,
		search.CompletedAt,
		search.ID,
	).Error
}

func (r *repo) InsertCandidate(ctx context.Context, db *gorm.DB, candidate *searchdomain.SearchCandidate) error {
	return db.WithContext(ctx).Create(candidate).Error
}

func (r *repo) ListCandidates(ctx context.Context, db *gorm.DB, searchID snowflake.ID) ([]searchdomain.SearchCandidate, error) {
	var candidates []searchdomain.SearchCandidate
	err := db.WithContext(ctx).
		Where("search_id = ?", searchID).
		Order("created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *repo) FindCandidate(ctx context.Context, db *gorm.DB, searchID, candidateID snowflake.ID) (*searchdomain.SearchCandidate, error) {
	var candidate searchdomain.SearchCandidate
	err := db.WithContext(ctx).
		Where("search_id = ? AND id = ?", searchID, candidateID).
		Limit(1).
		Find(&candidate).Error
	if err != nil {
		return nil, err
	}
	if candidate.ID == 0 {
		return nil, nil
	}
	return &candidate, nil
}

func (r *repo) MarkCandidateRevealed(ctx context.Context, db *gorm.DB, candidateID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE search_candidates SET revealed = ? WHERE id = ?`,
		true,
		candidateID,
	).Error
}

func (r *repo) InsertScore(ctx context.Context, db *gorm.DB, score *searchdomain.CandidateScore) error {
	return db.WithContext(ctx).Create(score).Error
}

func (r *repo) ListScores(ctx context.Context, db *gorm.DB, searchID snowflake.ID) ([]searchdomain.CandidateScore, error) {
	var scores []searchdomain.CandidateScore
	err := db.WithContext(ctx).
		Where("search_id = ?", searchID).
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
