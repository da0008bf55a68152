package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/catalog/domain"
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
	GenID   *snowflake.Node
	Repo    domain.Repository
	Sellers sellerdomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	sellers sellerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("catalog.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		sellers: p.Sellers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateItemRequest) (domain.CatalogItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CatalogItem{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	item := domain.CatalogItem{
		ID:        s.genID.Generate(),
		Name:      name,
		Category:  strings.TrimSpace(req.Category),
		FileRef:   strings.TrimSpace(req.FileRef),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &item); err != nil {
		return domain.CatalogItem{}, err
	}

	return item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListItemRequest) (domain.ListItemResponse, error) {
	filter := domain.ListItemFilter{
		Category:   strings.TrimSpace(req.Category),
		SellerID:   strings.TrimSpace(req.SellerID),
		PoolOnly:   req.PoolOnly,
		ActiveOnly: req.ActiveOnly,
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
		return domain.ListItemResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(item *domain.CatalogItem) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	out := make([]domain.CatalogItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}

	resp := domain.ListItemResponse{Items: out}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetItemRequest) (domain.CatalogItem, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	if item == nil {
		return domain.CatalogItem{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Assign(ctx context.Context, req domain.AssignItemRequest) (domain.CatalogItem, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	var sellerID snowflake.ID
	if target := strings.TrimSpace(req.SellerID); target != "" {
		sellerID, err = s.parseID(target)
		if err != nil {
			return domain.CatalogItem{}, domain.ErrInvalidSeller
		}
		seller, findErr := s.sellers.FindByID(ctx, s.db, sellerID)
		if findErr != nil {
			return domain.CatalogItem{}, findErr
		}
		if seller == nil {
			return domain.CatalogItem{}, domain.ErrInvalidSeller
		}
	}

	affected, err := s.repo.UpdateAssignment(ctx, s.db, id, sellerID)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	if affected == 0 {
		return domain.CatalogItem{}, domain.ErrNotFound
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	if item == nil {
		return domain.CatalogItem{}, domain.ErrNotFound
	}

	s.log.Info("catalog item assigned",
		zap.Int64("item_id", int64(id)),
		zap.Int64("seller_id", int64(sellerID)),
	)
	return *item, nil
}

func (s *Service) SetActive(ctx context.Context, req domain.SetItemActiveRequest) (domain.CatalogItem, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	affected, err := s.repo.UpdateActive(ctx, s.db, id, req.Active)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	if affected == 0 {
		return domain.CatalogItem{}, domain.ErrNotFound
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	if item == nil {
		return domain.CatalogItem{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
