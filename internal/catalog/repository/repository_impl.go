package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/catalog/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.CatalogItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO catalog_items (id, name, category, file_ref, seller_id, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Name,
		item.Category,
		item.FileRef,
		item.SellerID,
		item.Active,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, category, file_ref, seller_id, active, created_at, updated_at
		 FROM catalog_items WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListItemFilter, page pagination.Pagination) ([]*domain.CatalogItem, error) {
	var items []*domain.CatalogItem
	stmt := db.WithContext(ctx).Model(&domain.CatalogItem{})
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.SellerID != "" {
		stmt = stmt.Where("seller_id = ?", filter.SellerID)
	}
	if filter.PoolOnly {
		stmt = stmt.Where("seller_id = 0")
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("active = ?", true)
	}
	stmt = pagination.Apply(stmt, page)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateAssignment(ctx context.Context, db *gorm.DB, id, sellerID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE catalog_items SET seller_id = ?, updated_at = ? WHERE id = ?`,
		sellerID,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) UpdateActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE catalog_items SET active = ?, updated_at = ? WHERE id = ?`,
		active,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
