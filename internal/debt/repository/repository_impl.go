package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/debt/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const entryColumns = `id, seller_id, kind, state, amount_cents, excess_units, period_key,
	 payment_method, reference_code, proof_attachment_ref, resolved_at, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.DebtEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO debt_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SellerID,
		entry.Kind,
		entry.State,
		entry.AmountCents,
		entry.ExcessUnits,
		entry.PeriodKey,
		entry.PaymentMethod,
		entry.ReferenceCode,
		entry.ProofAttachmentRef,
		entry.ResolvedAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.DebtEntry, error) {
	var entry domain.DebtEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+` FROM debt_entries WHERE id = ?`,
		id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) ListBySeller(ctx context.Context, db *gorm.DB, sellerID snowflake.ID) ([]*domain.DebtEntry, error) {
	var entries []*domain.DebtEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+` FROM debt_entries
		 WHERE seller_id = ? ORDER BY created_at DESC, id DESC`,
		sellerID,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListDebtFilter, page pagination.Pagination) ([]*domain.DebtEntry, error) {
	var entries []*domain.DebtEntry
	stmt := db.WithContext(ctx).Model(&domain.DebtEntry{})
	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
	}
	if filter.SellerID != "" {
		stmt = stmt.Where("seller_id = ?", filter.SellerID)
	}
	stmt = pagination.Apply(stmt, page)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) AttachProof(ctx context.Context, db *gorm.DB, id snowflake.ID, from []domain.State, method, reference, proofRef string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE debt_entries
		 SET state = ?, payment_method = ?, reference_code = ?, proof_attachment_ref = ?,
		     resolved_at = NULL, updated_at = ?
		 WHERE id = ? AND state IN ?`,
		domain.StatePendingVerification,
		method,
		reference,
		proofRef,
		now,
		id,
		from,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) Resolve(ctx context.Context, db *gorm.DB, id snowflake.ID, from []domain.State, to domain.State, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE debt_entries SET state = ?, resolved_at = ?, updated_at = ? WHERE id = ? AND state IN ?`,
		to,
		now,
		now,
		id,
		from,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) Summary(ctx context.Context, db *gorm.DB) (domain.OpenSummary, error) {
	var summary domain.OpenSummary
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount_cents), 0) AS total_cents,
		        COUNT(DISTINCT seller_id) AS sellers_with_debt
		 FROM debt_entries WHERE state IN ?`,
		[]domain.State{domain.StatePending, domain.StatePendingVerification},
	).Scan(&summary).Error
	if err != nil {
		return domain.OpenSummary{}, err
	}
	return summary, nil
}

func (r *repo) SellerOpenTotal(ctx context.Context, db *gorm.DB, sellerID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount_cents), 0) FROM debt_entries
		 WHERE seller_id = ? AND state IN ?`,
		sellerID,
		[]domain.State{domain.StatePending, domain.StatePendingVerification},
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
