package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, seller *Seller) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Seller, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Seller, error)
	List(ctx context.Context, db *gorm.DB, filter ListSellerFilter, page pagination.Pagination) ([]*Seller, error)
	// UpdateStatus transitions the seller only when its current status is in
	// from, returning the number of rows changed.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []Status, to Status) (int64, error)
}
