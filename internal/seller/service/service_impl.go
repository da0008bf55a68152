package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	pkgdb "github.com/megaprint/megaprint/pkg/db"
	"github.com/megaprint/megaprint/internal/seller/domain"
	"github.com/megaprint/megaprint/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("seller.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSellerRequest) (domain.Seller, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Seller{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Seller{}, domain.ErrInvalidEmail
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Seller{}, err
	}
	if existing != nil {
		return domain.Seller{}, domain.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	seller := domain.Seller{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Status:    domain.StatusPending,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &seller); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Seller{}, domain.ErrDuplicateEmail
		}
		return domain.Seller{}, err
	}

	s.log.Info("seller registered", zap.Int64("seller_id", int64(seller.ID)))
	return seller, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSellerRequest) (domain.ListSellerResponse, error) {
	filter := domain.ListSellerFilter{
		Status: strings.TrimSpace(req.Status),
		Email:  strings.TrimSpace(req.Email),
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
		return domain.ListSellerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(seller *domain.Seller) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        seller.ID.String(),
			CreatedAt: seller.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	sellers := make([]domain.Seller, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		sellers = append(sellers, *item)
	}

	resp := domain.ListSellerResponse{Sellers: sellers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetSellerRequest) (domain.Seller, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Seller{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Seller{}, err
	}
	if item == nil {
		return domain.Seller{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Approve(ctx context.Context, req domain.ReviewSellerRequest) (domain.Seller, error) {
	return s.review(ctx, req, domain.StatusApproved)
}

func (s *Service) Reject(ctx context.Context, req domain.ReviewSellerRequest) (domain.Seller, error) {
	return s.review(ctx, req, domain.StatusRejected)
}

func (s *Service) review(ctx context.Context, req domain.ReviewSellerRequest, to domain.Status) (domain.Seller, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Seller{}, err
	}

	affected, err := s.repo.UpdateStatus(ctx, s.db, id, []domain.Status{domain.StatusPending}, to)
	if err != nil {
		return domain.Seller{}, err
	}
	if affected == 0 {
		item, findErr := s.repo.FindByID(ctx, s.db, id)
		if findErr != nil {
			return domain.Seller{}, findErr
		}
		if item == nil {
			return domain.Seller{}, domain.ErrNotFound
		}
		return domain.Seller{}, domain.ErrInvalidState
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Seller{}, err
	}
	if item == nil {
		return domain.Seller{}, domain.ErrNotFound
	}

	s.log.Info("seller reviewed",
		zap.Int64("seller_id", int64(id)),
		zap.String("status", string(to)),
	)
	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
