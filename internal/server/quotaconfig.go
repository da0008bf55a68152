package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	quotaconfigdomain "github.com/megaprint/megaprint/internal/quotaconfig/domain"
)

func (s *Server) GetQuotaConfig(c *gin.Context) {
	resp, err := s.quotaConfigSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetQuotaConfigHistory(c *gin.Context) {
	var req quotaconfigdomain.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotaConfigSvc.History(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateQuotaConfig(c *gin.Context) {
	var req quotaconfigdomain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotaConfigSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
