package domain

import (
	"context"
	"errors"

	"github.com/megaprint/megaprint/pkg/db/pagination"
)

type CreateSellerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ListSellerRequest struct {
	PageToken string
	PageSize  int32
	Status    string
	Email     string
}

type ListSellerFilter struct {
	Status string
	Email  string
}

type ListSellerResponse struct {
	pagination.PageInfo
	Sellers []Seller `json:"sellers"`
}

type GetSellerRequest struct {
	ID string
}

type ReviewSellerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateSellerRequest) (Seller, error)
	List(context.Context, ListSellerRequest) (ListSellerResponse, error)
	GetByID(context.Context, GetSellerRequest) (Seller, error)
	// Approve grants an account access to printing. Only pending accounts
	// can be approved.
	Approve(context.Context, ReviewSellerRequest) (Seller, error)
	// Reject closes a pending account application.
	Reject(context.Context, ReviewSellerRequest) (Seller, error)
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrDuplicateEmail = errors.New("duplicate_email")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidState   = errors.New("invalid_state")
)
