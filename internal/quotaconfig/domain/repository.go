package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	InsertAll(ctx context.Context, db *gorm.DB, settings []*Setting) error
	// LatestValues returns the most recently saved value per key.
	LatestValues(ctx context.Context, db *gorm.DB) (map[string]string, error)
	History(ctx context.Context, db *gorm.DB, key string, limit int) ([]*Setting, error)
}
