package domain

import (
	"context"
	"errors"

	debtdomain "github.com/megaprint/megaprint/internal/debt/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
)

// MaxBatchUnits bounds a single confirmation. Larger runs are split by
// the shop floor anyway.
const MaxBatchUnits = 10000

type ConfirmItem struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

// ConfirmRequest finalizes a print run. Zero-quantity items are ignored;
// an all-zero or empty batch confirms nothing and still succeeds.
type ConfirmRequest struct {
	SellerID string        `json:"seller_id"`
	Items    []ConfirmItem `json:"items"`
}

// ConfirmResult reports the batch, the totals after it was applied and
// the debt entry it produced, if any. Batch is nil for an empty batch.
type ConfirmResult struct {
	Batch       *PrintBatch           `json:"batch,omitempty"`
	DailyUsed   int64                 `json:"daily_used"`
	WeeklyUsed  int64                 `json:"weekly_used"`
	ChargeCents int64                 `json:"charge_cents"`
	ExcessUnits int64                 `json:"excess_units"`
	Debt        *debtdomain.DebtEntry `json:"debt,omitempty"`
}

type ListBatchesRequest struct {
	SellerID  string
	PageToken string
	PageSize  int32
}

type ListBatchesResponse struct {
	pagination.PageInfo
	Batches []PrintBatch `json:"batches"`
}

type Service interface {
	// Confirm applies a finished print run to the seller's quota windows,
	// prices any overage and records the resulting debt. The whole batch
	// commits atomically: a failure on any item applies none of them.
	Confirm(context.Context, ConfirmRequest) (ConfirmResult, error)
	ListBatches(context.Context, ListBatchesRequest) (ListBatchesResponse, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidUnits      = errors.New("invalid_units")
	ErrNotFound          = errors.New("not_found")
	ErrSellerNotApproved = errors.New("seller_not_approved")
	ErrItemInactive      = errors.New("item_inactive")
	ErrItemNotAvailable  = errors.New("item_not_available")
	ErrConflict          = errors.New("conflict")
)
