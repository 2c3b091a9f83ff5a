package core

import "time"

// LifetimeTotals are whole-history sums, independent of any selected month.
type LifetimeTotals struct {
	// Income and Expense sum all plain transactions regardless of recurrence.
	Income  Money
	Expense Money
	// Credits is the sum of credit contributions under the policy.
	Credits Money
	// Debts sums each debt scaled by its remaining monthly installments;
	// non-recurring debts count once.
	Debts       Money
	Commitments Money
}

// BalanceSheet combines the selected month's forecast with whole-history
// actuals. The month view answers "what does this month look like"; the
// lifetime view answers "what is my net worth right now".
type BalanceSheet struct {
	// Month-scoped.
	Assets      Money
	Liabilities Money
	NetWorth    Money

	// Whole-history.
	LiquidAssets     Money
	TotalCredits     Money
	TotalDebts       Money
	TotalCommitments Money
	NetWorthTotal    Money
}

// Lifetime reduces all records into whole-history totals. now anchors the
// remaining-months projection for recurring debts.
func Lifetime(records []Record, policy Policy, now time.Time) LifetimeTotals {
	totals := LifetimeTotals{
		Income:      MoneyZero(),
		Expense:     MoneyZero(),
		Credits:     MoneyZero(),
		Debts:       MoneyZero(),
		Commitments: MoneyZero(),
	}

	for _, r := range records {
		switch r.Kind {
		case KindTransaction:
			if r.Flow == FlowIncome {
				totals.Income = totals.Income.Add(r.Amount)
			} else if r.Flow == FlowExpense {
				totals.Expense = totals.Expense.Add(r.Amount)
			}
		case KindCredit:
			totals.Credits = totals.Credits.Add(LifetimeContribution(r, policy, now))
		case KindDebt:
			totals.Debts = totals.Debts.Add(LifetimeContribution(r, policy, now))
		case KindCommitment:
			if policy.IncludeCommitments {
				totals.Commitments = totals.Commitments.Add(r.Amount)
			}
		}
	}

	return totals
}

// BuildBalanceSheet assembles the dual-view report from month totals and
// lifetime totals computed under the same policy.
func BuildBalanceSheet(month PeriodTotals, lifetime LifetimeTotals, policy Policy) BalanceSheet {
	assets := month.Credits.Add(month.Income).Add(month.RecurringIncome)
	liabilities := month.Debts.Add(month.Expense).Add(month.RecurringExpense)
	if policy.IncludeCommitments {
		liabilities = liabilities.Add(month.Commitments)
	}

	liquid := lifetime.Income.Sub(lifetime.Expense)

	return BalanceSheet{
		Assets:      assets,
		Liabilities: liabilities,
		NetWorth:    assets.Sub(liabilities),

		LiquidAssets:     liquid,
		TotalCredits:     lifetime.Credits,
		TotalDebts:       lifetime.Debts,
		TotalCommitments: lifetime.Commitments,
		NetWorthTotal: liquid.
			Add(lifetime.Credits).
			Sub(lifetime.Debts).
			Sub(lifetime.Commitments),
	}
}

// BalanceSheetFor is the one-call form: aggregate the target month, reduce
// the whole history, and build the report. onSkip, when non-nil, receives
// each malformed record excluded from the month totals.
func BalanceSheetFor(records []Record, target time.Time, policy Policy, now time.Time, onSkip SkipFunc) (BalanceSheet, error) {
	month, err := AggregateWithDiagnostics(records, target, policy, onSkip)
	if err != nil {
		return BalanceSheet{}, err
	}
	lifetime := Lifetime(records, policy, now)
	return BuildBalanceSheet(month, lifetime, policy), nil
}
