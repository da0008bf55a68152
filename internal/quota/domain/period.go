package domain

import "time"

const keyLayout = "2006-01-02"

// DayKey returns the calendar date of t in the shop's fixed-offset zone.
func DayKey(t time.Time, offsetMinutes int) string {
	return shopTime(t, offsetMinutes).Format(keyLayout)
}

// WeekKey returns the Monday that starts the week containing t, in the
// shop's fixed-offset zone.
func WeekKey(t time.Time, offsetMinutes int) string {
	local := shopTime(t, offsetMinutes)
	back := (int(local.Weekday()) + 6) % 7
	return local.AddDate(0, 0, -back).Format(keyLayout)
}

// PeriodKey dispatches on the counter kind.
func PeriodKey(kind PeriodKind, t time.Time, offsetMinutes int) string {
	if kind == PeriodWeekly {
		return WeekKey(t, offsetMinutes)
	}
	return DayKey(t, offsetMinutes)
}

func shopTime(t time.Time, offsetMinutes int) time.Time {
	return t.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
}
