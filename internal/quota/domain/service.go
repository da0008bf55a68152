package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Totals are the confirmed seller-wide counts before a batch was applied,
// along with the window keys they were read under.
type Totals struct {
	Daily   int64
	Weekly  int64
	DayKey  string
	WeekKey string
}

// ItemUnits is one catalog item's share of a confirmed batch.
type ItemUnits struct {
	ItemID snowflake.ID
	Units  int64
}

// Counts is the usage snapshot served to the shop floor UI. Provisional
// units are unconfirmed tallies held in memory only.
type Counts struct {
	SellerID          snowflake.ID `json:"seller_id"`
	DayKey            string       `json:"day_key"`
	WeekKey           string       `json:"week_key"`
	DailyUsed         int64        `json:"daily_used"`
	WeeklyUsed        int64        `json:"weekly_used"`
	ProvisionalDaily  int64        `json:"provisional_daily"`
	ProvisionalWeekly int64        `json:"provisional_weekly"`
	DailyLimit        int64        `json:"daily_limit"`
	WeeklyLimit       int64        `json:"weekly_limit"`
	DailyRemaining    int64        `json:"daily_remaining"`
	WeeklyRemaining   int64        `json:"weekly_remaining"`
}

type RecordProvisionalRequest struct {
	SellerID string `json:"seller_id"`
	ItemID   string `json:"item_id"`
	Units    int64  `json:"units"`
}

type CountsRequest struct {
	SellerID string
}

type Service interface {
	// RecordProvisional adjusts the item's in-memory tally by Units, which
	// may be negative to back out a cancelled job. Per-item tallies never
	// drop below zero, so over-cancelling is a no-op.
	RecordProvisional(context.Context, RecordProvisionalRequest) (Counts, error)
	Counts(context.Context, CountsRequest) (Counts, error)
	// ApplyTx adds a confirmed batch to the seller-wide and per-item
	// windows inside the caller's transaction and returns the seller-wide
	// totals before the batch. Callers price overage from the returned
	// totals.
	ApplyTx(ctx context.Context, tx *gorm.DB, sellerID snowflake.ID, items []ItemUnits, now time.Time) (Totals, error)
	// ReleaseProvisional backs confirmed units out of the provisional tally.
	ReleaseProvisional(sellerID snowflake.ID, items []ItemUnits, now time.Time)
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidUnits = errors.New("invalid_units")
	ErrNotFound     = errors.New("not_found")
)
