package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/megaprint/megaprint/internal/catalog/domain"
	"github.com/megaprint/megaprint/internal/clock"
	"github.com/megaprint/megaprint/internal/config"
	"github.com/megaprint/megaprint/internal/observability/metrics"
	"github.com/megaprint/megaprint/internal/quota/domain"
	"github.com/megaprint/megaprint/internal/quota/provisional"
	quotaconfigdomain "github.com/megaprint/megaprint/internal/quotaconfig/domain"
	sellerdomain "github.com/megaprint/megaprint/internal/seller/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Cfg         config.Config
	Clock       clock.Clock
	Repo        domain.Repository
	Sellers     sellerdomain.Repository
	Catalog     catalogdomain.Repository
	Settings    quotaconfigdomain.Service
	Provisional *provisional.Store
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	offset      int
	clock       clock.Clock
	repo        domain.Repository
	sellers     sellerdomain.Repository
	catalog     catalogdomain.Repository
	settings    quotaconfigdomain.Service
	provisional *provisional.Store
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("quota.service"),
		genID:       p.GenID,
		offset:      p.Cfg.QuotaUTCOffsetMinutes,
		clock:       p.Clock,
		repo:        p.Repo,
		sellers:     p.Sellers,
		catalog:     p.Catalog,
		settings:    p.Settings,
		provisional: p.Provisional,
		metrics:     p.Metrics,
	}
}

func (s *Service) RecordProvisional(ctx context.Context, req domain.RecordProvisionalRequest) (domain.Counts, error) {
	sellerID, err := s.parseID(req.SellerID)
	if err != nil {
		return domain.Counts{}, err
	}
	itemID, err := s.parseID(req.ItemID)
	if err != nil {
		return domain.Counts{}, err
	}
	if req.Units == 0 {
		return domain.Counts{}, domain.ErrInvalidUnits
	}

	seller, err := s.sellers.FindByID(ctx, s.db, sellerID)
	if err != nil {
		return domain.Counts{}, err
	}
	if seller == nil {
		return domain.Counts{}, domain.ErrNotFound
	}

	item, err := s.catalog.FindByID(ctx, s.db, itemID)
	if err != nil {
		return domain.Counts{}, err
	}
	if item == nil {
		return domain.Counts{}, domain.ErrNotFound
	}

	now := s.clock.Now()
	dayKey := domain.DayKey(now, s.offset)
	weekKey := domain.WeekKey(now, s.offset)
	s.provisional.Add(sellerID, itemID, req.Units, dayKey, weekKey)

	direction := "up"
	if req.Units < 0 {
		direction = "down"
	}
	s.metrics.RecordProvisionalPrint(ctx, direction)

	return s.counts(ctx, sellerID, now)
}

func (s *Service) Counts(ctx context.Context, req domain.CountsRequest) (domain.Counts, error) {
	sellerID, err := s.parseID(req.SellerID)
	if err != nil {
		return domain.Counts{}, err
	}

	seller, err := s.sellers.FindByID(ctx, s.db, sellerID)
	if err != nil {
		return domain.Counts{}, err
	}
	if seller == nil {
		return domain.Counts{}, domain.ErrNotFound
	}

	return s.counts(ctx, sellerID, s.clock.Now())
}

func (s *Service) counts(ctx context.Context, sellerID snowflake.ID, now time.Time) (domain.Counts, error) {
	dayKey := domain.DayKey(now, s.offset)
	weekKey := domain.WeekKey(now, s.offset)

	counters, err := s.repo.ListBySeller(ctx, s.db, sellerID)
	if err != nil {
		return domain.Counts{}, err
	}

	var dailyUsed, weeklyUsed int64
	for _, counter := range counters {
		if counter == nil || counter.ItemID != domain.TotalItemID {
			continue
		}
		switch counter.PeriodKind {
		case domain.PeriodDaily:
			dailyUsed = counter.UnitsFor(dayKey)
		case domain.PeriodWeekly:
			weeklyUsed = counter.UnitsFor(weekKey)
		}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.Counts{}, err
	}

	provDaily, provWeekly := s.provisional.Get(sellerID, dayKey, weekKey)

	return domain.Counts{
		SellerID:          sellerID,
		DayKey:            dayKey,
		WeekKey:           weekKey,
		DailyUsed:         dailyUsed,
		WeeklyUsed:        weeklyUsed,
		ProvisionalDaily:  provDaily,
		ProvisionalWeekly: provWeekly,
		DailyLimit:        settings.DailyLimit,
		WeeklyLimit:       settings.WeeklyLimit,
		DailyRemaining:    remaining(settings.DailyLimit, dailyUsed+provDaily),
		WeeklyRemaining:   remaining(settings.WeeklyLimit, weeklyUsed+provWeekly),
	}, nil
}

// ApplyTx bumps the locked seller-wide windows once with the batch total,
// then each item's windows. The seller-wide daily counter is locked first
// everywhere so concurrent confirmations for one seller serialize instead
// of deadlocking.
func (s *Service) ApplyTx(ctx context.Context, tx *gorm.DB, sellerID snowflake.ID, items []domain.ItemUnits, now time.Time) (domain.Totals, error) {
	var total int64
	for _, item := range items {
		if item.Units <= 0 {
			return domain.Totals{}, domain.ErrInvalidUnits
		}
		total += item.Units
	}
	if total <= 0 {
		return domain.Totals{}, domain.ErrInvalidUnits
	}

	dayKey := domain.DayKey(now, s.offset)
	weekKey := domain.WeekKey(now, s.offset)

	dailyBefore, err := s.bump(ctx, tx, sellerID, domain.TotalItemID, domain.PeriodDaily, dayKey, total)
	if err != nil {
		return domain.Totals{}, err
	}
	weeklyBefore, err := s.bump(ctx, tx, sellerID, domain.TotalItemID, domain.PeriodWeekly, weekKey, total)
	if err != nil {
		return domain.Totals{}, err
	}

	for _, item := range items {
		if item.ItemID == domain.TotalItemID {
			continue
		}
		if _, err := s.bump(ctx, tx, sellerID, item.ItemID, domain.PeriodDaily, dayKey, item.Units); err != nil {
			return domain.Totals{}, err
		}
		if _, err := s.bump(ctx, tx, sellerID, item.ItemID, domain.PeriodWeekly, weekKey, item.Units); err != nil {
			return domain.Totals{}, err
		}
	}

	return domain.Totals{
		Daily:   dailyBefore,
		Weekly:  weeklyBefore,
		DayKey:  dayKey,
		WeekKey: weekKey,
	}, nil
}

func (s *Service) ReleaseProvisional(sellerID snowflake.ID, items []domain.ItemUnits, now time.Time) {
	dayKey := domain.DayKey(now, s.offset)
	weekKey := domain.WeekKey(now, s.offset)
	for _, item := range items {
		if item.Units <= 0 {
			continue
		}
		s.provisional.Add(sellerID, item.ItemID, -item.Units, dayKey, weekKey)
	}
}

// bump locks the counter row, rolls a stale window forward and adds
// units, returning the count before this batch.
func (s *Service) bump(ctx context.Context, tx *gorm.DB, sellerID, itemID snowflake.ID, kind domain.PeriodKind, periodKey string, units int64) (int64, error) {
	counter, err := s.repo.FindForUpdate(ctx, tx, sellerID, itemID, kind)
	if err != nil {
		return 0, err
	}

	if counter == nil {
		return 0, s.repo.Insert(ctx, tx, &domain.PrintCounter{
			ID:         s.genID.Generate(),
			SellerID:   sellerID,
			ItemID:     itemID,
			PeriodKind: kind,
			PeriodKey:  periodKey,
			Units:      units,
			UpdatedAt:  time.Now().UTC(),
		})
	}

	before := counter.UnitsFor(periodKey)
	return before, s.repo.Save(ctx, tx, counter.ID, periodKey, before+units)
}

func remaining(limit, used int64) int64 {
	left := limit - used
	if left < 0 {
		return 0
	}
	return left
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
