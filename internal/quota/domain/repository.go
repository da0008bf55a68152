package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindForUpdate locks the counter row for the rest of the transaction.
	FindForUpdate(ctx context.Context, tx *gorm.DB, sellerID, itemID snowflake.ID, kind PeriodKind) (*PrintCounter, error)
	Insert(ctx context.Context, tx *gorm.DB, counter *PrintCounter) error
	// Save rewrites the window key and unit count in place.
	Save(ctx context.Context, tx *gorm.DB, id snowflake.ID, periodKey string, units int64) error
	ListBySeller(ctx context.Context, db *gorm.DB, sellerID snowflake.ID) ([]*PrintCounter, error)
}
