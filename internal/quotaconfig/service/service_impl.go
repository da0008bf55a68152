package service

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/config"
	"github.com/megaprint/megaprint/internal/quotaconfig/domain"
	"github.com/megaprint/megaprint/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Defaults *config.QuotaDefaultsHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	defaults *config.QuotaDefaultsHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("quotaconfig.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		defaults: p.Defaults,
	}
}

// Get merges saved values over the bootstrap defaults. Unset or
// unparseable keys fall back per key, never as a whole.
func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	defaults := s.defaults.Get()
	settings := domain.Settings{
		DailyLimit:           defaults.DailyLimit,
		WeeklyLimit:          defaults.WeeklyLimit,
		OverageUnitCostCents: money.ToCents(defaults.OverageUnitCost),
		ApplyToAllSellers:    defaults.ApplyToAllSellers,
	}

	values, err := s.repo.LatestValues(ctx, s.db)
	if err != nil {
		return domain.Settings{}, err
	}

	if raw, ok := values[domain.KeyDailyLimit]; ok {
		if parsed, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil && parsed >= 0 {
			settings.DailyLimit = parsed
		}
	}
	if raw, ok := values[domain.KeyWeeklyLimit]; ok {
		if parsed, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil && parsed >= 0 {
			settings.WeeklyLimit = parsed
		}
	}
	if raw, ok := values[domain.KeyOverageUnitCostCents]; ok {
		if parsed, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil && parsed >= 0 {
			settings.OverageUnitCostCents = parsed
		}
	}
	if raw, ok := values[domain.KeyApplyToAllSellers]; ok {
		if parsed, parseErr := strconv.ParseBool(raw); parseErr == nil {
			settings.ApplyToAllSellers = parsed
		}
	}

	settings.OverageUnitCost = money.FromCents(settings.OverageUnitCostCents)
	return settings, nil
}

// History lists a key's saved revisions, newest first.
func (s *Service) History(ctx context.Context, req domain.HistoryRequest) ([]domain.Setting, error) {
	key := req.Key
	switch key {
	case domain.KeyDailyLimit, domain.KeyWeeklyLimit, domain.KeyOverageUnitCostCents, domain.KeyApplyToAllSellers:
	default:
		return nil, domain.ErrInvalidKey
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.repo.History(ctx, s.db, key, limit)
	if err != nil {
		return nil, err
	}

	revisions := make([]domain.Setting, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		revisions = append(revisions, *row)
	}
	return revisions, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSettingsRequest) (domain.Settings, error) {
	now := time.Now().UTC()
	var rows []*domain.Setting

	if req.DailyLimit != nil {
		if *req.DailyLimit < 0 {
			return domain.Settings{}, domain.ErrInvalidLimit
		}
		rows = append(rows, s.row(domain.KeyDailyLimit, strconv.FormatInt(*req.DailyLimit, 10), now))
	}
	if req.WeeklyLimit != nil {
		if *req.WeeklyLimit < 0 {
			return domain.Settings{}, domain.ErrInvalidLimit
		}
		rows = append(rows, s.row(domain.KeyWeeklyLimit, strconv.FormatInt(*req.WeeklyLimit, 10), now))
	}
	if req.OverageUnitCost != nil {
		if *req.OverageUnitCost < 0 {
			return domain.Settings{}, domain.ErrInvalidCost
		}
		cents := money.ToCents(*req.OverageUnitCost)
		rows = append(rows, s.row(domain.KeyOverageUnitCostCents, strconv.FormatInt(cents, 10), now))
	}
	if req.ApplyToAllSellers != nil {
		rows = append(rows, s.row(domain.KeyApplyToAllSellers, strconv.FormatBool(*req.ApplyToAllSellers), now))
	}

	if len(rows) == 0 {
		return domain.Settings{}, domain.ErrEmptyUpdate
	}

	if err := s.repo.InsertAll(ctx, s.db, rows); err != nil {
		return domain.Settings{}, err
	}

	s.log.Info("quota settings updated", zap.Int("keys", len(rows)))
	return s.Get(ctx)
}

func (s *Service) row(key, value string, now time.Time) *domain.Setting {
	return &domain.Setting{
		ID:        s.genID.Generate(),
		Key:       key,
		Value:     value,
		CreatedAt: now,
	}
}
