package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"gorm.io/gorm"
)

// OpenSummary aggregates debt that has not been settled or written off.
type OpenSummary struct {
	TotalCents      int64 `json:"total_cents"`
	SellersWithDebt int64 `json:"sellers_with_debt"`
}

type ListDebtFilter struct {
	State    string
	SellerID string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *DebtEntry) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DebtEntry, error)
	ListBySeller(ctx context.Context, db *gorm.DB, sellerID snowflake.ID) ([]*DebtEntry, error)
	List(ctx context.Context, db *gorm.DB, filter ListDebtFilter, page pagination.Pagination) ([]*DebtEntry, error)
	// AttachProof moves the entry to pending_verification and records the
	// payment details, only when the current state is in from.
	AttachProof(ctx context.Context, db *gorm.DB, id snowflake.ID, from []State, method, reference, proofRef string, now time.Time) (int64, error)
	// Resolve finalizes the entry, only when the current state is in from.
	Resolve(ctx context.Context, db *gorm.DB, id snowflake.ID, from []State, to State, now time.Time) (int64, error)
	Summary(ctx context.Context, db *gorm.DB) (OpenSummary, error)
	SellerOpenTotal(ctx context.Context, db *gorm.DB, sellerID snowflake.ID) (int64, error)
}
