package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetCreditBalance(c *gin.Context) {
	orgID, _ := orgIDFrom(c)

	balance, err := s.creditSvc.Balance(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"organization_id": orgID.String(),
		"balance":         balance,
	})
}

func (s *Server) ListCreditTransactions(c *gin.Context) {
	orgID, _ := orgIDFrom(c)
	limit, offset := pagination(c)

	transactions, err := s.creditSvc.History(c.Request.Context(), orgID, limit, offset)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
