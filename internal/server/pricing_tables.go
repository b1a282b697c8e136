package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
)

func (s *Server) ListPricingTables(c *gin.Context) {
	resp, err := s.tableSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPricingTableByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.tableSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreatePricingTable(c *gin.Context) {
	var req tabledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.tableSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateExamplePricingTable(c *gin.Context) {
	resp, err := s.tableSvc.CreateExample(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePricingTable(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req tabledomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.tableSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Table edits are live configuration. Frozen sessions keep their
	// snapshots; legacy sessions pick up the new ranges on the sweep.
	s.recalc.OnSettingsChange(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePricingTable(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.tableSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recalc.OnSettingsChange(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
