package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	settingsdomain "github.com/atelierlabs/fotura/internal/pricingsettings/domain"
)

func (s *Server) GetPricingSettings(c *gin.Context) {
	resp, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePricingSettings(c *gin.Context) {
	var req settingsdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settingsSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Settings edits only affect legacy sessions; frozen sessions are
	// filtered out by the sweep itself.
	s.recalc.OnSettingsChange(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
