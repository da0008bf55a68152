package domain

import (
	"context"
	"errors"

	"github.com/megaprint/megaprint/pkg/db/pagination"
)

type CreateItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	FileRef  string `json:"file_ref"`
}

type ListItemRequest struct {
	PageToken  string
	PageSize   int32
	Category   string
	SellerID   string
	PoolOnly   bool
	ActiveOnly bool
}

type ListItemFilter struct {
	Category   string
	SellerID   string
	PoolOnly   bool
	ActiveOnly bool
}

type ListItemResponse struct {
	pagination.PageInfo
	Items []CatalogItem `json:"items"`
}

type GetItemRequest struct {
	ID string
}

// AssignItemRequest moves an item to a seller's personal catalog. An empty
// SellerID returns the item to the shared pool.
type AssignItemRequest struct {
	ID       string `json:"-"`
	SellerID string `json:"seller_id"`
}

type SetItemActiveRequest struct {
	ID     string `json:"-"`
	Active bool   `json:"active"`
}

type Service interface {
	Create(context.Context, CreateItemRequest) (CatalogItem, error)
	List(context.Context, ListItemRequest) (ListItemResponse, error)
	GetByID(context.Context, GetItemRequest) (CatalogItem, error)
	Assign(context.Context, AssignItemRequest) (CatalogItem, error)
	SetActive(context.Context, SetItemActiveRequest) (CatalogItem, error)
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrInvalidSeller = errors.New("invalid_seller")
)
