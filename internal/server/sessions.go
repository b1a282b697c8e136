package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelierlabs/fotura/internal/pricing"
	sessiondomain "github.com/atelierlabs/fotura/internal/session/domain"
)

func (s *Server) ListSessions(c *gin.Context) {
	resp, err := s.sessionSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSessionByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.sessionSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateSession(c *gin.Context) {
	var req sessiondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ClientName = strings.TrimSpace(req.ClientName)
	req.CategoryID = strings.TrimSpace(req.CategoryID)

	resp, err := s.sessionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setQuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

func (s *Server) SetSessionQuantity(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessionSvc.SetQuantity(c.Request.Context(), id, pricing.SanitizeQuantity(req.Quantity))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Follow-up edits within the debounce window collapse into one run.
	s.recalc.OnQuantityChange(id, resp.ExtraPhotoQuantity)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setPriceRequest struct {
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

func (s *Server) SetSessionManualPrice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req setPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessionSvc.SetManualPrice(c.Request.Context(), id, req.UnitPrice, req.TotalPrice)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recalc.Forget(id)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecalculateSession(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	session, err := s.sessionSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	changed, err := s.recalc.RecomputeNow(c.Request.Context(), id, session.ExtraPhotoQuantity, false)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.sessionSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp, "changed": changed})
}

func (s *Server) MigrateLegacySessions(c *gin.Context) {
	count, err := s.sessionSvc.MigrateLegacy(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"migrated": count}})
}
