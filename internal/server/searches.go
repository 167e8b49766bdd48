package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
)

type CreateSearchRequest struct {
	Query string `json:"query"`
}

func (s *Server) CreateSearch(c *gin.Context) {
	userID, _ := userIDFrom(c)
	orgID, _ := orgIDFrom(c)

	var req CreateSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.subscriptionSvc.GateSearch(c.Request.Context(), orgID); err != nil {
		AbortWithError(c, err)
		return
	}

	if allowed, retryAfter := s.searchLimiter.Allow(c.Request.Context(), orgID.String()); !allowed {
		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
			Type:    "rate_limited",
			Message: "too many search submissions",
		}})
		return
	}

	created, err := s.searchSvc.Create(c.Request.Context(), searchdomain.CreateRequest{
		OrganizationID: orgID,
		UserID:         userID,
		Query:          req.Query,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.runner.Start(created.ID)

	c.JSON(http.StatusCreated, created)
}

func (s *Server) ListSearches(c *gin.Context) {
	orgID, _ := orgIDFrom(c)
	limit, offset := pagination(c)

	searches, err := s.searchSvc.List(c.Request.Context(), orgID, limit, offset)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": searches})
}

func (s *Server) GetSearch(c *gin.Context) {
	userID, _ := userIDFrom(c)
	searchID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.searchSvc.Detail(c.Request.Context(), searchID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetSearchQuery serves the structured query the parser derived from the raw
// text. Searches that never produced a valid parse respond 409.
func (s *Server) GetSearchQuery(c *gin.Context) {
	userID, _ := userIDFrom(c)
	searchID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	parsed, err := s.searchSvc.Query(c.Request.Context(), searchID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parsed_query": parsed})
}

func (s *Server) GetSearchProgress(c *gin.Context) {
	userID, _ := userIDFrom(c)
	searchID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	progress, err := s.searchSvc.Progress(c.Request.Context(), searchID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, newValidationError(name, "missing_"+name, "missing path parameter")
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, searchdomain.ErrNotFound
	}
	return id, nil
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
