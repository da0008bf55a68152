package overage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeWithinLimits(t *testing.T) {
	cfg := Config{DailyLimit: 30, WeeklyLimit: 150, UnitCostCents: 50}

	charge := Compute(cfg, Totals{Daily: 10, Weekly: 40}, 5)
	assert.True(t, charge.Free())
	assert.Zero(t, charge.AmountCents)
}

func TestComputeDailyExcess(t *testing.T) {
	cfg := Config{DailyLimit: 30, WeeklyLimit: 120, UnitCostCents: 50}

	// 35 units on an empty day: 5 beyond the daily limit at 50c each.
	charge := Compute(cfg, Totals{}, 35)
	assert.Equal(t, int64(5), charge.ExcessDaily)
	assert.Zero(t, charge.ExcessWeekly)
	assert.Equal(t, int64(250), charge.AmountCents)
}

func TestComputeMarginalOnly(t *testing.T) {
	cfg := Config{DailyLimit: 30, WeeklyLimit: 150, UnitCostCents: 50}

	// Already 5 units beyond the daily limit. Only the new 10 are charged.
	charge := Compute(cfg, Totals{Daily: 35, Weekly: 35}, 10)
	assert.Equal(t, int64(10), charge.ExcessDaily)
	assert.Equal(t, int64(500), charge.AmountCents)
}

func TestComputeBothWindowsCharged(t *testing.T) {
	cfg := Config{DailyLimit: 30, WeeklyLimit: 40, UnitCostCents: 50}

	// 20 units starting at daily 25, weekly 35: 15 beyond daily, 15 beyond
	// weekly, both charged.
	charge := Compute(cfg, Totals{Daily: 25, Weekly: 35}, 20)
	assert.Equal(t, int64(15), charge.ExcessDaily)
	assert.Equal(t, int64(15), charge.ExcessWeekly)
	assert.Equal(t, int64(30), charge.ExcessUnits())
	assert.Equal(t, int64(1500), charge.AmountCents)
}

func TestComputeZeroLimitChargesEverything(t *testing.T) {
	cfg := Config{DailyLimit: 0, WeeklyLimit: 0, UnitCostCents: 25}

	charge := Compute(cfg, Totals{}, 4)
	assert.Equal(t, int64(4), charge.ExcessDaily)
	assert.Equal(t, int64(4), charge.ExcessWeekly)
	assert.Equal(t, int64(200), charge.AmountCents)
}

func TestComputeNoUnits(t *testing.T) {
	cfg := Config{DailyLimit: 30, WeeklyLimit: 150, UnitCostCents: 50}

	assert.True(t, Compute(cfg, Totals{Daily: 100, Weekly: 100}, 0).Free())
	assert.True(t, Compute(cfg, Totals{}, -3).Free())
}

func TestComputeSplitBatchesMatchSingleBatch(t *testing.T) {
	cfg := Config{DailyLimit: 30, WeeklyLimit: 150, UnitCostCents: 50}

	single := Compute(cfg, Totals{}, 50)

	first := Compute(cfg, Totals{}, 20)
	second := Compute(cfg, Totals{Daily: 20, Weekly: 20}, 30)

	assert.Equal(t, single.AmountCents, first.AmountCents+second.AmountCents)
}
