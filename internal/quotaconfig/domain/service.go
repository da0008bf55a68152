package domain

import (
	"context"
	"errors"
)

// Settings are the effective quota knobs after merging saved values over
// the bootstrap defaults. OverageUnitCost is the decimal rendering of
// OverageUnitCostCents.
type Settings struct {
	DailyLimit           int64   `json:"daily_limit"`
	WeeklyLimit          int64   `json:"weekly_limit"`
	OverageUnitCostCents int64   `json:"overage_unit_cost_cents"`
	OverageUnitCost      float64 `json:"overage_unit_cost"`
	ApplyToAllSellers    bool    `json:"apply_to_all_sellers"`
}

// UpdateSettingsRequest carries a partial update. Nil fields keep their
// current value. OverageUnitCost is a decimal currency amount.
type UpdateSettingsRequest struct {
	DailyLimit        *int64   `json:"daily_limit"`
	WeeklyLimit       *int64   `json:"weekly_limit"`
	OverageUnitCost   *float64 `json:"overage_unit_cost"`
	ApplyToAllSellers *bool    `json:"apply_to_all_sellers"`
}

// HistoryRequest asks for a key's saved revisions, newest first. A
// non-positive Limit falls back to the default page size.
type HistoryRequest struct {
	Key   string `form:"key" json:"key"`
	Limit int    `form:"limit" json:"limit"`
}

type Service interface {
	Get(context.Context) (Settings, error)
	Update(context.Context, UpdateSettingsRequest) (Settings, error)
	History(context.Context, HistoryRequest) ([]Setting, error)
}

var (
	ErrInvalidLimit = errors.New("invalid_limit")
	ErrInvalidCost  = errors.New("invalid_cost")
	ErrInvalidKey   = errors.New("invalid_key")
	ErrEmptyUpdate  = errors.New("empty_update")
)
