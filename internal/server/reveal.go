package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	creditdomain "github.com/talentsift/talentsift/internal/credit/domain"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	"gorm.io/gorm"
)

type revealResponse struct {
	CandidateID string                  `json:"candidate_id"`
	PublicID    string                  `json:"public_id"`
	Revealed    bool                    `json:"revealed"`
	Profile     *searchdomain.Candidate `json:"profile,omitempty"`
	Charged     bool                    `json:"charged"`
}

// RevealCandidate unlocks a candidate's full profile, debiting the
// organization's credit balance. Revealing an already revealed candidate is
// idempotent and free.
func (s *Server) RevealCandidate(c *gin.Context) {
	userID, _ := userIDFrom(c)

	searchID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	candidateID, err := pathID(c, "candidateID")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	search, err := s.searchSvc.Get(c.Request.Context(), searchID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	candidate, err := s.searchRepo.FindCandidate(c.Request.Context(), s.db, searchID, candidateID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if candidate == nil {
		AbortWithError(c, searchdomain.ErrCandidateNotFound)
		return
	}

	charged := false
	if !candidate.Revealed {
		ctx := c.Request.Context()
		// The reveal mark rides the deduction transaction so a mark failure
		// rolls the charge back instead of leaving a paid-but-locked candidate.
		if _, err := s.creditSvc.Deduct(ctx, creditdomain.DeductRequest{
			OrganizationID:  search.OrgID,
			UserID:          userID,
			Amount:          s.cfg.RevealCreditCost,
			CreditType:      creditdomain.CreditTypeProfileReveal,
			RelatedEntityID: candidate.ID,
			Description:     "profile reveal",
			Metadata: map[string]any{
				"search_id": search.ID.String(),
				"public_id": candidate.PublicID,
			},
			Apply: func(tx *gorm.DB) error {
				return s.searchRepo.MarkCandidateRevealed(ctx, tx, candidate.ID)
			},
		}); err != nil {
			AbortWithError(c, err)
			return
		}
		candidate.Revealed = true
		charged = true
	}

	resp := revealResponse{
		CandidateID: candidate.ID.String(),
		PublicID:    candidate.PublicID,
		Revealed:    true,
		Charged:     charged,
	}
	if len(candidate.Profile) > 0 {
		var profile searchdomain.Candidate
		if err := json.Unmarshal(candidate.Profile, &profile); err == nil {
			resp.Profile = &profile
		}
	}
	c.JSON(http.StatusOK, resp)
}
