package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/printing/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, batch *domain.PrintBatch) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO print_batches (id, seller_id, units, items, charge_cents, debt_entry_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.SellerID,
		batch.Units,
		batch.Items,
		batch.ChargeCents,
		batch.DebtEntryID,
		batch.CreatedAt,
	).Error
}

func (r *repo) ListBySeller(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, page pagination.Pagination) ([]*domain.PrintBatch, error) {
	var batches []*domain.PrintBatch
	stmt := db.WithContext(ctx).
		Model(&domain.PrintBatch{}).
		Where("seller_id = ?", sellerID)
	stmt = pagination.Apply(stmt, page)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}
