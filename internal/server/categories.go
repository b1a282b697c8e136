package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
)

func (s *Server) ListCategories(c *gin.Context) {
	resp, err := s.categorySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCategoryByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.categorySvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req categorydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.PricingTableID = strings.TrimSpace(req.PricingTableID)

	resp, err := s.categorySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCategory(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req categorydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.categorySvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Re-linking a category to another table changes live pricing for
	// legacy per-category sessions.
	s.recalc.OnSettingsChange(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
