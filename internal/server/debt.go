package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	debtdomain "github.com/megaprint/megaprint/internal/debt/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
)

func (s *Server) ListSellerDebts(c *gin.Context) {
	sellerID := strings.TrimSpace(c.Param("seller_id"))
	resp, err := s.debtSvc.ListBySeller(c.Request.Context(), debtdomain.ListSellerDebtRequest{
		SellerID: sellerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDebts(c *gin.Context) {
	var query struct {
		pagination.Pagination
		State    string `form:"state"`
		SellerID string `form:"seller_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.debtSvc.List(c.Request.Context(), debtdomain.ListDebtRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		State:     strings.TrimSpace(query.State),
		SellerID:  strings.TrimSpace(query.SellerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type attachDebtProofRequest struct {
	PaymentMethod      string `json:"payment_method"`
	ReferenceCode      string `json:"reference_code"`
	ProofAttachmentRef string `json:"proof_attachment_ref"`
}

func (s *Server) AttachDebtPaymentProof(c *gin.Context) {
	var req attachDebtProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.debtSvc.AttachProof(c.Request.Context(), debtdomain.AttachProofRequest{
		ID:                 strings.TrimSpace(c.Param("id")),
		PaymentMethod:      strings.TrimSpace(req.PaymentMethod),
		ReferenceCode:      strings.TrimSpace(req.ReferenceCode),
		ProofAttachmentRef: strings.TrimSpace(req.ProofAttachmentRef),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveDebt(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.debtSvc.Approve(c.Request.Context(), debtdomain.ReviewDebtRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RejectDebt(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.debtSvc.Reject(c.Request.Context(), debtdomain.ReviewDebtRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
