package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/clock"
	"github.com/megaprint/megaprint/internal/debt/domain"
	"github.com/megaprint/megaprint/internal/observability/metrics"
	sellerdomain "github.com/megaprint/megaprint/internal/seller/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Sellers sellerdomain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	sellers sellerdomain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("debt.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		sellers: p.Sellers,
		metrics: p.Metrics,
	}
}

func (s *Service) ListBySeller(ctx context.Context, req domain.ListSellerDebtRequest) (domain.ListSellerDebtResponse, error) {
	sellerID, err := s.parseID(req.SellerID)
	if err != nil {
		return domain.ListSellerDebtResponse{}, err
	}

	seller, err := s.sellers.FindByID(ctx, s.db, sellerID)
	if err != nil {
		return domain.ListSellerDebtResponse{}, err
	}
	if seller == nil {
		return domain.ListSellerDebtResponse{}, domain.ErrNotFound
	}

	items, err := s.repo.ListBySeller(ctx, s.db, sellerID)
	if err != nil {
		return domain.ListSellerDebtResponse{}, err
	}

	openTotal, err := s.repo.SellerOpenTotal(ctx, s.db, sellerID)
	if err != nil {
		return domain.ListSellerDebtResponse{}, err
	}

	entries := make([]domain.DebtEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}

	return domain.ListSellerDebtResponse{
		SellerID:       sellerID,
		Entries:        entries,
		OpenTotalCents: openTotal,
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDebtRequest) (domain.ListDebtResponse, error) {
	filter := domain.ListDebtFilter{
		State:    strings.TrimSpace(req.State),
		SellerID: strings.TrimSpace(req.SellerID),
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListDebtResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(entry *domain.DebtEntry) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        entry.ID.String(),
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	summary, err := s.repo.Summary(ctx, s.db)
	if err != nil {
		return domain.ListDebtResponse{}, err
	}

	entries := make([]domain.DebtEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}

	resp := domain.ListDebtResponse{
		Entries:         entries,
		TotalDebtCents:  summary.TotalCents,
		SellersWithDebt: summary.SellersWithDebt,
	}
	if summary.SellersWithDebt > 0 {
		resp.AveragePerSellerCents = summary.TotalCents / summary.SellersWithDebt
	}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) AttachProof(ctx context.Context, req domain.AttachProofRequest) (domain.DebtEntry, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.DebtEntry{}, err
	}

	method := strings.TrimSpace(req.PaymentMethod)
	reference := strings.TrimSpace(req.ReferenceCode)
	if method == "" || reference == "" {
		return domain.DebtEntry{}, domain.ErrInvalidPayment
	}

	affected, err := s.repo.AttachProof(ctx, s.db, id,
		[]domain.State{domain.StatePending, domain.StateRejected},
		method, reference, strings.TrimSpace(req.ProofAttachmentRef), s.clock.Now())
	if err != nil {
		return domain.DebtEntry{}, err
	}
	if affected == 0 {
		return domain.DebtEntry{}, s.stateError(ctx, id)
	}

	s.metrics.RecordDebtTransition(ctx, string(domain.StatePendingVerification))
	return s.fetch(ctx, id)
}

func (s *Service) Approve(ctx context.Context, req domain.ReviewDebtRequest) (domain.DebtEntry, error) {
	return s.resolve(ctx, req, domain.StatePaid)
}

func (s *Service) Reject(ctx context.Context, req domain.ReviewDebtRequest) (domain.DebtEntry, error) {
	return s.resolve(ctx, req, domain.StateRejected)
}

func (s *Service) resolve(ctx context.Context, req domain.ReviewDebtRequest, to domain.State) (domain.DebtEntry, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.DebtEntry{}, err
	}

	affected, err := s.repo.Resolve(ctx, s.db, id,
		[]domain.State{domain.StatePendingVerification}, to, s.clock.Now())
	if err != nil {
		return domain.DebtEntry{}, err
	}
	if affected == 0 {
		// A retried resolve on an already settled entry reports the stale
		// state so callers can tell "already applied" from "applied now".
		return domain.DebtEntry{}, s.stateError(ctx, id)
	}

	s.metrics.RecordDebtTransition(ctx, string(to))
	s.log.Info("debt entry resolved",
		zap.Int64("debt_id", int64(id)),
		zap.String("state", string(to)),
	)
	return s.fetch(ctx, id)
}

func (s *Service) fetch(ctx context.Context, id snowflake.ID) (domain.DebtEntry, error) {
	entry, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.DebtEntry{}, err
	}
	if entry == nil {
		return domain.DebtEntry{}, domain.ErrNotFound
	}
	return *entry, nil
}

func (s *Service) stateError(ctx context.Context, id snowflake.ID) error {
	entry, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidState
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
