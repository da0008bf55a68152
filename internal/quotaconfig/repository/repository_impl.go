package repository

import (
	"context"

	"github.com/megaprint/megaprint/internal/quotaconfig/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertAll(ctx context.Context, db *gorm.DB, settings []*domain.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, setting := range settings {
			err := tx.Exec(
				`INSERT INTO quota_settings (id, key, value, created_at)
				 VALUES (?, ?, ?, ?)`,
				setting.ID,
				setting.Key,
				setting.Value,
				setting.CreatedAt,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) LatestValues(ctx context.Context, db *gorm.DB) (map[string]string, error) {
	var rows []domain.Setting
	err := db.WithContext(ctx).Raw(
		`SELECT key, value FROM quota_settings
		 WHERE id IN (SELECT MAX(id) FROM quota_settings GROUP BY key)`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

func (r *repo) History(ctx context.Context, db *gorm.DB, key string, limit int) ([]*domain.Setting, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []*domain.Setting
	err := db.WithContext(ctx).Raw(
		`SELECT id, key, value, created_at FROM quota_settings
		 WHERE key = ? ORDER BY id DESC LIMIT ?`,
		key,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
