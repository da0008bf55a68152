// Package overage prices print units that land beyond the configured
// daily and weekly limits.
package overage

// Config are the effective limits and the price per excess unit.
type Config struct {
	DailyLimit    int64
	WeeklyLimit   int64
	UnitCostCents int64
}

// Totals are the confirmed unit counts before a batch is applied.
type Totals struct {
	Daily  int64
	Weekly int64
}

// Charge is the priced outcome of one confirmed batch.
type Charge struct {
	ExcessDaily  int64
	ExcessWeekly int64
	AmountCents  int64
}

// ExcessUnits is the total number of units charged across both windows.
// A batch exceeding both limits is charged in each, matching how the
// windows are accounted independently.
func (c Charge) ExcessUnits() int64 {
	return c.ExcessDaily + c.ExcessWeekly
}

// Free reports whether the batch stayed fully within both limits.
func (c Charge) Free() bool {
	return c.AmountCents <= 0 && c.ExcessUnits() == 0
}

// Compute prices the marginal excess a batch introduces. Units already
// beyond a limit before this batch are never re-charged.
func Compute(cfg Config, before Totals, units int64) Charge {
	if units <= 0 {
		return Charge{}
	}

	excessDaily := marginalExcess(before.Daily, units, cfg.DailyLimit)
	excessWeekly := marginalExcess(before.Weekly, units, cfg.WeeklyLimit)

	return Charge{
		ExcessDaily:  excessDaily,
		ExcessWeekly: excessWeekly,
		AmountCents:  (excessDaily + excessWeekly) * cfg.UnitCostCents,
	}
}

func marginalExcess(before, units, limit int64) int64 {
	if limit < 0 {
		limit = 0
	}
	excessBefore := before - limit
	if excessBefore < 0 {
		excessBefore = 0
	}
	excessAfter := before + units - limit
	if excessAfter < 0 {
		excessAfter = 0
	}
	return excessAfter - excessBefore
}
