package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   searchdomain.Repository
	OrgSvc orgdomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   searchdomain.Repository
	orgSvc orgdomain.Service
}

func New(p Params) searchdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("search.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		orgSvc: p.OrgSvc,
	}
}

func (s *Service) Create(ctx context.Context, req searchdomain.CreateRequest) (*searchdomain.Search, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, searchdomain.ErrInvalidQuery
	}
	if req.OrganizationID == 0 || req.UserID == 0 {
		return nil, orgdomain.ErrInvalidUser
	}

	isMember, err := s.orgSvc.IsMember(ctx, req.OrganizationID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, orgdomain.ErrNotMember
	}

	now := time.Now().UTC()
	search := &searchdomain.Search{
		ID:        s.genID.Generate(),
		OrgID:     req.OrganizationID,
		UserID:    req.UserID,
		Query:     query,
		Name:      searchdomain.SearchName(searchdomain.ParsedQuery{}),
		Status:    searchdomain.StatusPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, search); err != nil {
		return nil, err
	}
	return search, nil
}

// Get enforces the authorization order the progress endpoint promises:
// missing search → not found, foreign search → not a member.
func (s *Service) Get(ctx context.Context, searchID, userID snowflake.ID) (*searchdomain.Search, error) {
	search, err := s.repo.FindByID(ctx, s.db, searchID)
	if err != nil {
		return nil, err
	}
	if search == nil {
		return nil, searchdomain.ErrNotFound
	}

	isMember, err := s.orgSvc.IsMember(ctx, search.OrgID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, orgdomain.ErrNotMember
	}
	return search, nil
}

func (s *Service) Progress(ctx context.Context, searchID, userID snowflake.ID) (*searchdomain.ProgressResponse, error) {
	search, err := s.Get(ctx, searchID, userID)
	if err != nil {
		return nil, err
	}
	resp := ProgressOf(search)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID, limit, offset int) ([]searchdomain.Search, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByOrg(ctx, s.db, orgID, limit, offset)
}

func (s *Service) Detail(ctx context.Context, searchID, userID snowflake.ID) (*searchdomain.DetailResponse, error) {
	search, err := s.Get(ctx, searchID, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.ListCandidates(ctx, s.db, search.ID)
	if err != nil {
		return nil, err
	}
	scores, err := s.repo.ListScores(ctx, s.db, search.ID)
	if err != nil {
		return nil, err
	}

	byCandidate := make(map[snowflake.ID]*searchdomain.CandidateScore, len(scores))
	for i := range scores {
		byCandidate[scores[i].CandidateID] = &scores[i]
	}

	rows := make([]searchdomain.CandidateWithScore, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, searchdomain.CandidateWithScore{
			Candidate: c,
			Score:     byCandidate[c.ID],
		})
	}

	return &searchdomain.DetailResponse{Search: search, Candidates: rows}, nil
}

func (s *Service) Query(ctx context.Context, searchID, userID snowflake.ID) (*searchdomain.ParsedQuery, error) {
	search, err := s.Get(ctx, searchID, userID)
	if err != nil {
		return nil, err
	}
	return s.ParsedQueryOf(search)
}

func (s *Service) ParsedQueryOf(search *searchdomain.Search) (*searchdomain.ParsedQuery, error) {
	if search == nil || len(search.ParsedQuery) == 0 {
		return nil, searchdomain.ErrMissingParseResponse
	}

	var parsed searchdomain.ParsedQuery
	if err := json.Unmarshal(search.ParsedQuery, &parsed); err != nil {
		return nil, searchdomain.ErrMissingParseResponse
	}
	if err := parsed.Validate(); err != nil {
		return nil, searchdomain.ErrMissingParseResponse
	}
	return &parsed, nil
}

// ProgressOf projects the persisted search row into the progress payload
// served by both the pull endpoint and the SSE channel.
func ProgressOf(search *searchdomain.Search) searchdomain.ProgressResponse {
	return searchdomain.ProgressResponse{
		SearchID:           search.ID.String(),
		Name:               search.Name,
		Status:             search.Status,
		Progress:           search.Progress,
		CandidatesFound:    search.CandidatesFound,
		CandidatesEnriched: search.CandidatesEnriched,
		CandidatesScored:   search.CandidatesScored,
		CandidatesFailed:   search.CandidatesFailed,
		PagesFailed:        search.PagesFailed,
		ParseError:         search.ParseError,
		SourcingError:      search.SourcingError,
		ScoringError:       search.ScoringError,
		UpdatedAt:          search.UpdatedAt,
		CompletedAt:        search.CompletedAt,
	}
}
