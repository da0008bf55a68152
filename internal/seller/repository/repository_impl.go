package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/seller/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, seller *domain.Seller) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sellers (id, name, email, phone, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		seller.ID,
		seller.Name,
		seller.Email,
		seller.Phone,
		seller.Status,
		seller.Metadata,
		seller.CreatedAt,
		seller.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Seller, error) {
	var seller domain.Seller
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, phone, status, metadata, created_at, updated_at
		 FROM sellers WHERE id = ?`,
		id,
	).Scan(&seller).Error
	if err != nil {
		return nil, err
	}
	if seller.ID == 0 {
		return nil, nil
	}
	return &seller, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Seller, error) {
	var seller domain.Seller
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, phone, status, metadata, created_at, updated_at
		 FROM sellers WHERE lower(email) = lower(?)`,
		email,
	).Scan(&seller).Error
	if err != nil {
		return nil, err
	}
	if seller.ID == 0 {
		return nil, nil
	}
	return &seller, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListSellerFilter, page pagination.Pagination) ([]*domain.Seller, error) {
	var sellers []*domain.Seller
	stmt := db.WithContext(ctx).Model(&domain.Seller{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Email != "" {
		stmt = stmt.Where("lower(email) = lower(?)", filter.Email)
	}
	stmt = pagination.Apply(stmt, page)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&sellers).Error
	if err != nil {
		return nil, err
	}
	return sellers, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []domain.Status, to domain.Status) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE sellers SET status = ?, updated_at = ? WHERE id = ? AND status IN ?`,
		to,
		time.Now().UTC(),
		id,
		from,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
