package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PeriodKind string

const (
	PeriodDaily  PeriodKind = "daily"
	PeriodWeekly PeriodKind = "weekly"
)

// TotalItemID marks the seller-wide counter row that spans all items.
const TotalItemID snowflake.ID = 0

// PrintCounter is one rolling usage window. The row is reused across
// periods: a counter whose PeriodKey is stale simply reads as zero and is
// rewritten in place on the next confirmation.
type PrintCounter struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	SellerID   snowflake.ID `gorm:"not null;uniqueIndex:idx_print_counters_scope,priority:1" json:"seller_id"`
	ItemID     snowflake.ID `gorm:"not null;default:0;uniqueIndex:idx_print_counters_scope,priority:2" json:"item_id"`
	PeriodKind PeriodKind   `gorm:"not null;uniqueIndex:idx_print_counters_scope,priority:3" json:"period_kind"`
	PeriodKey  string       `gorm:"not null" json:"period_key"`
	Units      int64        `gorm:"not null;default:0" json:"units"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// UnitsFor reads the counter as of the given period key, treating a stale
// key as an empty window.
func (c *PrintCounter) UnitsFor(periodKey string) int64 {
	if c == nil || c.PeriodKey != periodKey {
		return 0
	}
	return c.Units
}
