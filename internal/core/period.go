package core

import (
	"math"
	"time"
)

// PeriodEnd computes the end date for a budget period starting at start.
// Unknown periods silently fall back to monthly; that keeps end-date
// derivation total while create/update validation still rejects unknown
// period keywords.
func PeriodEnd(period Period, start Date) Date {
	switch period {
	case Daily:
		return Date{Time: start.AddDate(0, 0, 1)}
	case Weekly:
		return Date{Time: start.AddDate(0, 0, 7)}
	case Monthly:
		return Date{Time: start.AddDate(0, 1, 0)}
	case Quarterly:
		return Date{Time: start.AddDate(0, 3, 0)}
	case Yearly:
		return Date{Time: start.AddDate(1, 0, 0)}
	default:
		return Date{Time: start.AddDate(0, 1, 0)}
	}
}

// DaysElapsed counts whole days between start and now, rounded up.
// The difference is taken as an absolute value: a future start date still
// yields a positive count. Both engines depend on this symmetry for their
// elapsed/remaining ratios, so it is kept rather than clamped.
func DaysElapsed(start Date, now time.Time) int {
	return absDays(start.Time, now)
}

// DaysRemaining counts whole days between now and end, rounded up, with the
// same absolute-difference convention as DaysElapsed.
func DaysRemaining(end Date, now time.Time) int {
	return absDays(now, end.Time)
}

func absDays(a, b time.Time) int {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// InWindow reports whether d falls within [start, end], bounds included,
// compared at calendar-date granularity.
func InWindow(d, start, end Date) bool {
	if d.IsZero() {
		return false
	}
	day := d.Truncate(24 * time.Hour)
	return !day.Before(start.Truncate(24*time.Hour)) && !day.After(end.Truncate(24*time.Hour))
}
