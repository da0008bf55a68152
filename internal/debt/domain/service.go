package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/pkg/db/pagination"
)

type ListSellerDebtRequest struct {
	SellerID string
}

type ListSellerDebtResponse struct {
	SellerID       snowflake.ID `json:"seller_id"`
	Entries        []DebtEntry  `json:"entries"`
	OpenTotalCents int64        `json:"open_total_cents"`
}

type ListDebtRequest struct {
	PageToken string
	PageSize  int32
	State     string
	SellerID  string
}

type ListDebtResponse struct {
	pagination.PageInfo
	Entries []DebtEntry `json:"entries"`
	// Aggregates always cover all open debt, independent of the filter.
	TotalDebtCents        int64 `json:"total_debt_cents"`
	SellersWithDebt       int64 `json:"sellers_with_debt"`
	AveragePerSellerCents int64 `json:"average_per_seller_cents"`
}

// AttachProofRequest submits payment evidence for review. Allowed from
// pending and from rejected, so a seller can resubmit after a rejection.
type AttachProofRequest struct {
	ID                 string `json:"-"`
	PaymentMethod      string `json:"payment_method"`
	ReferenceCode      string `json:"reference_code"`
	ProofAttachmentRef string `json:"proof_attachment_ref"`
}

type ReviewDebtRequest struct {
	ID string
}

type Service interface {
	ListBySeller(context.Context, ListSellerDebtRequest) (ListSellerDebtResponse, error)
	List(context.Context, ListDebtRequest) (ListDebtResponse, error)
	AttachProof(context.Context, AttachProofRequest) (DebtEntry, error)
	// Approve settles an entry under review. Any other starting state,
	// including an already paid entry, reports ErrInvalidState.
	Approve(context.Context, ReviewDebtRequest) (DebtEntry, error)
	// Reject sends an entry under review back to the seller.
	Reject(context.Context, ReviewDebtRequest) (DebtEntry, error)
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidState   = errors.New("invalid_state")
	ErrInvalidPayment = errors.New("invalid_payment")
)
