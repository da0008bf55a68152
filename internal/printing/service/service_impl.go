package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/megaprint/megaprint/internal/catalog/domain"
	"github.com/megaprint/megaprint/internal/clock"
	debtdomain "github.com/megaprint/megaprint/internal/debt/domain"
	"github.com/megaprint/megaprint/internal/observability/metrics"
	"github.com/megaprint/megaprint/internal/overage"
	"github.com/megaprint/megaprint/internal/printing/domain"
	quotadomain "github.com/megaprint/megaprint/internal/quota/domain"
	quotaconfigdomain "github.com/megaprint/megaprint/internal/quotaconfig/domain"
	sellerdomain "github.com/megaprint/megaprint/internal/seller/domain"
	pkgdb "github.com/megaprint/megaprint/pkg/db"
	"github.com/megaprint/megaprint/pkg/money"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const confirmRetries = 3

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Sellers  sellerdomain.Repository
	Catalog  catalogdomain.Repository
	Quota    quotadomain.Service
	Settings quotaconfigdomain.Service
	Debts    debtdomain.Repository
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	sellers  sellerdomain.Repository
	catalog  catalogdomain.Repository
	quota    quotadomain.Service
	settings quotaconfigdomain.Service
	debts    debtdomain.Repository
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("printing.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		sellers:  p.Sellers,
		catalog:  p.Catalog,
		quota:    p.Quota,
		settings: p.Settings,
		debts:    p.Debts,
		metrics:  p.Metrics,
	}
}

func (s *Service) Confirm(ctx context.Context, req domain.ConfirmRequest) (domain.ConfirmResult, error) {
	sellerID, err := s.parseID(req.SellerID)
	if err != nil {
		return domain.ConfirmResult{}, err
	}

	seller, err := s.sellers.FindByID(ctx, s.db, sellerID)
	if err != nil {
		return domain.ConfirmResult{}, err
	}
	if seller == nil {
		return domain.ConfirmResult{}, domain.ErrNotFound
	}
	if !seller.Approved() {
		return domain.ConfirmResult{}, domain.ErrSellerNotApproved
	}

	items, total, err := s.resolveItems(ctx, sellerID, req.Items)
	if err != nil {
		return domain.ConfirmResult{}, err
	}
	if total == 0 {
		// Empty batch confirms nothing and still succeeds.
		counts, countsErr := s.quota.Counts(ctx, quotadomain.CountsRequest{SellerID: req.SellerID})
		if countsErr != nil {
			return domain.ConfirmResult{}, countsErr
		}
		return domain.ConfirmResult{
			DailyUsed:  counts.DailyUsed,
			WeeklyUsed: counts.WeeklyUsed,
		}, nil
	}
	if total > domain.MaxBatchUnits {
		return domain.ConfirmResult{}, domain.ErrInvalidUnits
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.ConfirmResult{}, err
	}
	cfg := overage.Config{
		DailyLimit:    settings.DailyLimit,
		WeeklyLimit:   settings.WeeklyLimit,
		UnitCostCents: settings.OverageUnitCostCents,
	}

	now := s.clock.Now()
	var result domain.ConfirmResult

	var lastErr error
	for attempt := 0; attempt < confirmRetries; attempt++ {
		lastErr = s.db.Transaction(func(tx *gorm.DB) error {
			totals, applyErr := s.quota.ApplyTx(ctx, tx, sellerID, items, now)
			if applyErr != nil {
				return applyErr
			}

			var charge overage.Charge
			if settings.ApplyToAllSellers {
				charge = overage.Compute(cfg, overage.Totals{
					Daily:  totals.Daily,
					Weekly: totals.Weekly,
				}, total)
			}

			var entry *debtdomain.DebtEntry
			if entry = debtdomain.NewOverageEntry(s.genID.Generate(), sellerID, charge, totals.DayKey, now); entry != nil {
				if insertErr := s.debts.Insert(ctx, tx, entry); insertErr != nil {
					return insertErr
				}
			}

			itemsJSON, encodeErr := domain.EncodeItems(batchItems(items))
			if encodeErr != nil {
				return encodeErr
			}
			batch := domain.PrintBatch{
				ID:          s.genID.Generate(),
				SellerID:    sellerID,
				Units:       total,
				Items:       itemsJSON,
				ChargeCents: charge.AmountCents,
				CreatedAt:   now,
			}
			if entry != nil {
				batch.DebtEntryID = entry.ID
			}
			if insertErr := s.repo.Insert(ctx, tx, &batch); insertErr != nil {
				return insertErr
			}

			result = domain.ConfirmResult{
				Batch:       &batch,
				DailyUsed:   totals.Daily + total,
				WeeklyUsed:  totals.Weekly + total,
				ChargeCents: charge.AmountCents,
				ExcessUnits: charge.ExcessUnits(),
				Debt:        entry,
			}
			return nil
		})
		if lastErr == nil {
			break
		}
		// A counter's first creation can race past the row lock: both
		// transactions find no row, both insert, the loser hits the unique
		// index. The row exists on retry, so treat it like a serialization
		// conflict.
		if !pkgdb.IsRetryableErr(lastErr) && !pkgdb.IsDuplicateKeyErr(lastErr) {
			return domain.ConfirmResult{}, lastErr
		}
	}
	if lastErr != nil {
		return domain.ConfirmResult{}, domain.ErrConflict
	}

	s.quota.ReleaseProvisional(sellerID, items, now)

	s.metrics.RecordPrintConfirmed(ctx, total)
	if result.Debt != nil {
		s.metrics.RecordOverageCharge(ctx, string(result.Debt.Kind))
	}

	s.log.Info("print batch confirmed",
		zap.Int64("seller_id", int64(sellerID)),
		zap.Int("items", len(items)),
		zap.Int64("units", total),
		zap.String("charge", money.FormatCents(result.ChargeCents)),
	)
	return result, nil
}

func (s *Service) ListBatches(ctx context.Context, req domain.ListBatchesRequest) (domain.ListBatchesResponse, error) {
	sellerID, err := s.parseID(req.SellerID)
	if err != nil {
		return domain.ListBatchesResponse{}, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListBySeller(ctx, s.db, sellerID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListBatchesResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(batch *domain.PrintBatch) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        batch.ID.String(),
			CreatedAt: batch.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	batches := make([]domain.PrintBatch, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		batches = append(batches, *item)
	}

	resp := domain.ListBatchesResponse{Batches: batches}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

// resolveItems validates every named catalog item and returns the merged
// per-item units with the batch total. Zero-quantity entries are dropped;
// repeated items accumulate.
func (s *Service) resolveItems(ctx context.Context, sellerID snowflake.ID, items []domain.ConfirmItem) ([]quotadomain.ItemUnits, int64, error) {
	merged := make([]quotadomain.ItemUnits, 0, len(items))
	index := make(map[snowflake.ID]int, len(items))

	var total int64
	for _, item := range items {
		if item.Quantity == 0 {
			continue
		}
		if item.Quantity < 0 {
			return nil, 0, domain.ErrInvalidUnits
		}

		itemID, err := s.resolveItem(ctx, sellerID, item.ItemID)
		if err != nil {
			return nil, 0, err
		}

		total += item.Quantity
		if at, ok := index[itemID]; ok {
			merged[at].Units += item.Quantity
			continue
		}
		index[itemID] = len(merged)
		merged = append(merged, quotadomain.ItemUnits{ItemID: itemID, Units: item.Quantity})
	}

	return merged, total, nil
}

// resolveItem checks the catalog item exists, is active and is either
// pooled or assigned to this seller.
func (s *Service) resolveItem(ctx context.Context, sellerID snowflake.ID, raw string) (snowflake.ID, error) {
	itemID, err := s.parseID(raw)
	if err != nil {
		return 0, err
	}

	item, err := s.catalog.FindByID(ctx, s.db, itemID)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, domain.ErrNotFound
	}
	if !item.Active {
		return 0, domain.ErrItemInactive
	}
	if item.SellerID != 0 && item.SellerID != sellerID {
		return 0, domain.ErrItemNotAvailable
	}
	return itemID, nil
}

func batchItems(items []quotadomain.ItemUnits) []domain.BatchItem {
	encoded := make([]domain.BatchItem, 0, len(items))
	for _, item := range items {
		encoded = append(encoded, domain.BatchItem{ItemID: item.ItemID, Units: item.Units})
	}
	return encoded
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
