package core

import "time"

// RemainingMonths counts the future monthly installments left in a recurring
// record, from the first day of the month after now through the recurrence
// end, inclusive. It is used to project outstanding recurring debt in the
// lifetime balance sheet.
//
// Non-recurring records count once. An open-ended recurrence also counts
// once: a conservative floor rather than an unbounded projection. A
// recurrence that ends before next month has lapsed and counts zero.
func RemainingMonths(r Record, now time.Time) int {
	if !r.Recurrence.Recurring {
		return 1
	}
	end := r.Recurrence.End
	if end.Indefinite() {
		return 1
	}

	nextMonth := MonthStart(now).AddDate(0, 1, 0)
	if end.effectiveEnd().Before(nextMonth) {
		return 0
	}

	endDate := end.Date()
	months := (endDate.Year()-nextMonth.Year())*12 +
		int(endDate.Month()) - int(nextMonth.Month()) + 1
	if months < 0 {
		return 0
	}
	return months
}
