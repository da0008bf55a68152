package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	printingdomain "github.com/megaprint/megaprint/internal/printing/domain"
	quotadomain "github.com/megaprint/megaprint/internal/quota/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
)

func (s *Server) RecordProvisionalPrint(c *gin.Context) {
	var req quotadomain.RecordProvisionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if sellerID := strings.TrimSpace(req.SellerID); sellerID != "" {
		c.Set("seller_id", sellerID)
	}

	counts, err := s.quotaSvc.RecordProvisional(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": counts})
}

func (s *Server) GetPrintCounts(c *gin.Context) {
	sellerID := strings.TrimSpace(c.Param("seller_id"))
	counts, err := s.quotaSvc.Counts(c.Request.Context(), quotadomain.CountsRequest{
		SellerID: sellerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": counts})
}

func (s *Server) ConfirmPrintBatch(c *gin.Context) {
	var req printingdomain.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if sellerID := strings.TrimSpace(req.SellerID); sellerID != "" {
		c.Set("seller_id", sellerID)
	}

	resp, err := s.printingSvc.Confirm(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPrintBatches(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.printingSvc.ListBatches(c.Request.Context(), printingdomain.ListBatchesRequest{
		SellerID:  strings.TrimSpace(c.Param("seller_id")),
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
