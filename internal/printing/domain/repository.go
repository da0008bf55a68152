package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, batch *PrintBatch) error
	ListBySeller(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, page pagination.Pagination) ([]*PrintBatch, error)
}
