package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *CatalogItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CatalogItem, error)
	List(ctx context.Context, db *gorm.DB, filter ListItemFilter, page pagination.Pagination) ([]*CatalogItem, error)
	UpdateAssignment(ctx context.Context, db *gorm.DB, id, sellerID snowflake.ID) (int64, error)
	UpdateActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) (int64, error)
}
