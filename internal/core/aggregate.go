package core

import (
	"errors"
	"time"
)

// ErrZeroTargetMonth is returned when an aggregation entry point is called
// without a target month. This is a programming error at the call boundary.
var ErrZeroTargetMonth = errors.New("target month is required")

// PeriodTotals are the named sums for one calendar month. Income and Expense
// cover non-recurring plain transactions; the recurring subsets are tracked
// separately for the balance sheet.
type PeriodTotals struct {
	Income           Money
	Expense          Money
	RecurringIncome  Money
	RecurringExpense Money
	Debts            Money
	Credits          Money
	Investments      Money
	Commitments      Money
	// TransactionCount is the number of records active in the month,
	// zero-amount records included.
	TransactionCount int
	// Skipped counts malformed records that were excluded from all sums.
	Skipped int
}

// SkipFunc receives each malformed record excluded from aggregation, so
// callers can report what was dropped.
type SkipFunc func(Record)

// Aggregate filters records by month membership and reduces them into
// PeriodTotals under the given policy. Malformed records are skipped, never
// fatal; summation is plain and order-independent.
func Aggregate(records []Record, target time.Time, policy Policy) (PeriodTotals, error) {
	return AggregateWithDiagnostics(records, target, policy, nil)
}

// AggregateWithDiagnostics is Aggregate with onSkip invoked once per skipped
// record. A nil onSkip only counts.
func AggregateWithDiagnostics(records []Record, target time.Time, policy Policy, onSkip SkipFunc) (PeriodTotals, error) {
	var totals PeriodTotals
	if target.IsZero() {
		return totals, ErrZeroTargetMonth
	}

	totals = PeriodTotals{
		Income:           MoneyZero(),
		Expense:          MoneyZero(),
		RecurringIncome:  MoneyZero(),
		RecurringExpense: MoneyZero(),
		Debts:            MoneyZero(),
		Credits:          MoneyZero(),
		Investments:      MoneyZero(),
		Commitments:      MoneyZero(),
	}

	skip := func(r Record) {
		totals.Skipped++
		if onSkip != nil {
			onSkip(r)
		}
	}

	for _, r := range records {
		if !r.Kind.Valid() {
			skip(r)
			continue
		}
		if !ActiveInMonth(r, target) {
			continue
		}

		amount := Contribution(r, policy)
		switch r.Kind {
		case KindTransaction:
			switch {
			case r.Flow == FlowIncome && r.Recurrence.Recurring:
				totals.RecurringIncome = totals.RecurringIncome.Add(amount)
			case r.Flow == FlowIncome:
				totals.Income = totals.Income.Add(amount)
			case r.Flow == FlowExpense && r.Recurrence.Recurring:
				totals.RecurringExpense = totals.RecurringExpense.Add(amount)
			case r.Flow == FlowExpense:
				totals.Expense = totals.Expense.Add(amount)
			default:
				skip(r)
				continue
			}
		case KindDebt:
			totals.Debts = totals.Debts.Add(amount)
		case KindCredit:
			totals.Credits = totals.Credits.Add(amount)
		case KindInvestment:
			totals.Investments = totals.Investments.Add(amount)
		case KindCommitment:
			totals.Commitments = totals.Commitments.Add(amount)
		}
		totals.TransactionCount++
	}

	return totals, nil
}
