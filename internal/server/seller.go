package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	sellerdomain "github.com/megaprint/megaprint/internal/seller/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
)

type createSellerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (s *Server) CreateSeller(c *gin.Context) {
	var req createSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sellerSvc.Create(c.Request.Context(), sellerdomain.CreateSellerRequest{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSellers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
		Email  string `form:"email"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sellerSvc.List(c.Request.Context(), sellerdomain.ListSellerRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Status:    strings.TrimSpace(query.Status),
		Email:     strings.TrimSpace(query.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSellerByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.sellerSvc.GetByID(c.Request.Context(), sellerdomain.GetSellerRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveSeller(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.sellerSvc.Approve(c.Request.Context(), sellerdomain.ReviewSellerRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RejectSeller(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.sellerSvc.Reject(c.Request.Context(), sellerdomain.ReviewSellerRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
