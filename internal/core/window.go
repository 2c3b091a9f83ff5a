package core

import "time"

// MonthStart returns the first instant of t's calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last instant of t's calendar month in UTC.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func sameMonth(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month()
}

// effectiveStart widens a month-only bound down to the first day of its month.
func (b Bound) effectiveStart() time.Time {
	if b.monthOnly {
		return MonthStart(b.date)
	}
	return b.date
}

// effectiveEnd widens a month-only bound up to the last instant of its month.
func (b Bound) effectiveEnd() time.Time {
	if b.monthOnly {
		return MonthEnd(b.date)
	}
	return b.date
}

// ActiveInMonth reports whether a record belongs to the calendar month of
// target. Only the year and month of target are significant.
//
// Recurring records are active in every month overlapping their window; an
// indefinite bound leaves that side open. One-time non-transaction records
// (debts, credits, investments, commitments) use their execution date when
// they have one, falling back to the recurrence start date; plain one-time
// transactions always use the start date. A one-time record without any
// usable date is active in no month.
func ActiveInMonth(r Record, target time.Time) bool {
	monthStart := MonthStart(target)
	monthEnd := MonthEnd(target)

	if r.Recurrence.Recurring {
		startOK := r.Recurrence.Start.Indefinite() ||
			!r.Recurrence.Start.effectiveStart().After(monthEnd)
		endOK := r.Recurrence.End.Indefinite() ||
			!r.Recurrence.End.effectiveEnd().Before(monthStart)
		return startOK && endOK
	}

	if r.Kind != KindTransaction && !r.Execution.Indefinite() {
		return sameMonth(r.Execution.Date(), target)
	}
	if !r.Recurrence.Start.Indefinite() {
		return sameMonth(r.Recurrence.Start.Date(), target)
	}
	return false
}
