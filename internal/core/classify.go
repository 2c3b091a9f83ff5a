package core

import "time"

// Policy holds the toggles that shape aggregation results.
type Policy struct {
	// UseProbabilistic weights credit contributions by their probability.
	UseProbabilistic bool
	// IncludeCommitments counts commitment amounts in liability totals.
	IncludeCommitments bool
}

// DefaultPolicy matches the app defaults: certain credits, commitments in.
func DefaultPolicy() Policy {
	return Policy{UseProbabilistic: false, IncludeCommitments: true}
}

// Contribution returns the amount a record adds to a single-month total.
// The sign is implied by the record's flow, never baked into the number.
func Contribution(r Record, p Policy) Money {
	switch r.Kind {
	case KindCredit:
		if p.UseProbabilistic {
			return r.Amount.Mul(r.Probability.Weight())
		}
		return r.Amount
	case KindCommitment:
		if !p.IncludeCommitments {
			return MoneyZero()
		}
		return r.Amount
	default:
		return r.Amount
	}
}

// LifetimeContribution returns the amount a record adds to a whole-history
// total. It differs from Contribution only for recurring debts, whose
// outstanding obligation is projected over the remaining installments.
func LifetimeContribution(r Record, p Policy, now time.Time) Money {
	if r.Kind == KindDebt {
		return r.Amount.MulInt(RemainingMonths(r, now))
	}
	return Contribution(r, p)
}
