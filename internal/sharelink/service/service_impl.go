package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	sharelinkdomain "github.com/talentsift/talentsift/internal/sharelink/domain"
	pkgdb "github.com/talentsift/talentsift/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       sharelinkdomain.Repository
	SearchRepo searchdomain.Repository
	OrgSvc     orgdomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       sharelinkdomain.Repository
	searchRepo searchdomain.Repository
	orgSvc     orgdomain.Service
}

func New(p Params) sharelinkdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("sharelink.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		searchRepo: p.SearchRepo,
		orgSvc:     p.OrgSvc,
	}
}

func (s *Service) EnsureForSearch(ctx context.Context, searchID, userID snowflake.ID) (string, error) {
	search, err := s.searchRepo.FindByID(ctx, s.db, searchID)
	if err != nil {
		return "", err
	}
	if search == nil {
		return "", searchdomain.ErrNotFound
	}
	if ok, err := s.orgSvc.IsMember(ctx, search.OrgID, userID); err != nil {
		return "", err
	} else if !ok {
		return "", orgdomain.ErrNotMember
	}
	if search.Status != searchdomain.StatusCompleted {
		return "", sharelinkdomain.ErrSearchNotCompleted
	}

	existing, err := s.repo.FindActiveBySearchID(ctx, s.db, searchID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.Token, nil
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	link := &sharelinkdomain.ShareLink{
		ID:        s.genID.Generate(),
		OrgID:     search.OrgID,
		SearchID:  search.ID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, s.db, link); err != nil {
		// Lost a create race: another request issued the link first.
		if pkgdb.IsDuplicateKeyErr(err) {
			if fallback, fetchErr := s.repo.FindActiveBySearchID(ctx, s.db, searchID); fetchErr == nil && fallback != nil {
				return fallback.Token, nil
			}
		}
		return "", err
	}
	return token, nil
}

func (s *Service) Resolve(ctx context.Context, token string) (*sharelinkdomain.SharedView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, sharelinkdomain.ErrNotFound
	}
	link, err := s.repo.FindActiveByToken(ctx, s.db, token)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, sharelinkdomain.ErrNotFound
	}
	search, err := s.searchRepo.FindByID(ctx, s.db, link.SearchID)
	if err != nil {
		return nil, err
	}
	if search == nil {
		return nil, sharelinkdomain.ErrNotFound
	}

	candidates, err := s.searchRepo.ListCandidates(ctx, s.db, search.ID)
	if err != nil {
		return nil, err
	}
	scores, err := s.searchRepo.ListScores(ctx, s.db, search.ID)
	if err != nil {
		return nil, err
	}
	byCandidate := make(map[snowflake.ID]searchdomain.CandidateScore, len(scores))
	for _, sc := range scores {
		byCandidate[sc.CandidateID] = sc
	}

	view := &sharelinkdomain.SharedView{
		Name:        search.Name,
		Status:      string(search.Status),
		CreatedAt:   search.CreatedAt,
		CompletedAt: search.CompletedAt,
		Candidates:  make([]sharelinkdomain.SharedCandidate, 0, len(candidates)),
	}
	for _, c := range candidates {
		shared := sharelinkdomain.SharedCandidate{
			FullName: c.FullName,
			Headline: c.Headline,
			PhotoURL: c.PhotoURL,
			Location: c.Location,
			Revealed: c.Revealed,
		}
		if c.Revealed {
			shared.PublicID = c.PublicID
		}
		if sc, ok := byCandidate[c.ID]; ok {
			score := sc.Score
			shared.Score = &score
			shared.Pros = decodeStrings(sc.Pros)
			shared.Cons = decodeStrings(sc.Cons)
		}
		view.Candidates = append(view.Candidates, shared)
	}
	return view, nil
}

func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
