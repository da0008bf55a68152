package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Setting is one saved configuration value. Rows are append-only and the
// newest row per key wins, so every historical value stays auditable.
type Setting struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Key       string       `gorm:"column:key;not null;index" json:"key"`
	Value     string       `gorm:"not null" json:"value"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Setting) TableName() string { return "quota_settings" }

const (
	KeyDailyLimit           = "daily_limit"
	KeyWeeklyLimit          = "weekly_limit"
	KeyOverageUnitCostCents = "overage_unit_cost_cents"
	KeyApplyToAllSellers    = "apply_to_all_sellers"
)
