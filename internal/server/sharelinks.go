package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) CreateShareLink(c *gin.Context) {
	userID, _ := userIDFrom(c)
	searchID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	token, err := s.sharelinkSvc.EnsureForSearch(c.Request.Context(), searchID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"url":   "/v1/shared/" + token,
	})
}

func (s *Server) GetSharedSearch(c *gin.Context) {
	view, err := s.sharelinkSvc.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
