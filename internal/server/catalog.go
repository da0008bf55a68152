package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/megaprint/megaprint/internal/catalog/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
)

type createCatalogItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	FileRef  string `json:"file_ref"`
}

func (s *Server) CreateCatalogItem(c *gin.Context) {
	var req createCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateItemRequest{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		FileRef:  strings.TrimSpace(req.FileRef),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCatalogItems(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Category   string `form:"category"`
		SellerID   string `form:"seller_id"`
		PoolOnly   string `form:"pool_only"`
		ActiveOnly string `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	poolOnly, err := parseOptionalBool(query.PoolOnly)
	if err != nil {
		AbortWithError(c, newValidationError("pool_only", "invalid_pool_only", "invalid pool_only"))
		return
	}

	activeOnly, err := parseOptionalBool(query.ActiveOnly)
	if err != nil {
		AbortWithError(c, newValidationError("active_only", "invalid_active_only", "invalid active_only"))
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListItemRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		Category:   strings.TrimSpace(query.Category),
		SellerID:   strings.TrimSpace(query.SellerID),
		PoolOnly:   poolOnly != nil && *poolOnly,
		ActiveOnly: activeOnly != nil && *activeOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCatalogItemByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.catalogSvc.GetByID(c.Request.Context(), catalogdomain.GetItemRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type assignCatalogItemRequest struct {
	SellerID string `json:"seller_id"`
}

func (s *Server) AssignCatalogItem(c *gin.Context) {
	var req assignCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Assign(c.Request.Context(), catalogdomain.AssignItemRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		SellerID: strings.TrimSpace(req.SellerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setCatalogItemActiveRequest struct {
	Active bool `json:"active"`
}

func (s *Server) SetCatalogItemActive(c *gin.Context) {
	var req setCatalogItemActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.SetActive(c.Request.Context(), catalogdomain.SetItemActiveRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Active: req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
