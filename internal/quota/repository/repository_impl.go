package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/quota/domain"
	pkgdb "github.com/megaprint/megaprint/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindForUpdate(ctx context.Context, tx *gorm.DB, sellerID, itemID snowflake.ID, kind domain.PeriodKind) (*domain.PrintCounter, error) {
	var counter domain.PrintCounter
	query := `SELECT id, seller_id, item_id, period_kind, period_key, units, updated_at
		 FROM print_counters WHERE seller_id = ? AND item_id = ? AND period_kind = ?` + pkgdb.LockingClause(tx)
	err := tx.WithContext(ctx).Raw(query, sellerID, itemID, kind).Scan(&counter).Error
	if err != nil {
		return nil, err
	}
	if counter.ID == 0 {
		return nil, nil
	}
	return &counter, nil
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, counter *domain.PrintCounter) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO print_counters (id, seller_id, item_id, period_kind, period_key, units, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		counter.ID,
		counter.SellerID,
		counter.ItemID,
		counter.PeriodKind,
		counter.PeriodKey,
		counter.Units,
		counter.UpdatedAt,
	).Error
}

func (r *repo) Save(ctx context.Context, tx *gorm.DB, id snowflake.ID, periodKey string, units int64) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE print_counters SET period_key = ?, units = ?, updated_at = ? WHERE id = ?`,
		periodKey,
		units,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) ListBySeller(ctx context.Context, db *gorm.DB, sellerID snowflake.ID) ([]*domain.PrintCounter, error) {
	var counters []*domain.PrintCounter
	err := db.WithContext(ctx).Raw(
		`SELECT id, seller_id, item_id, period_kind, period_key, units, updated_at
		 FROM print_counters WHERE seller_id = ?`,
		sellerID,
	).Scan(&counters).Error
	if err != nil {
		return nil, err
	}
	return counters, nil
}
