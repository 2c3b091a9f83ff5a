package core

import (
	"testing"
	"time"
)

func month(year, m int) time.Time {
	return time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

func recurring(start, end Bound) Record {
	return Record{
		Kind:        KindTransaction,
		Flow:        FlowExpense,
		Amount:      amt("100"),
		Description: "r",
		AccountID:   "main",
		Recurrence:  Recurrence{Recurring: true, Start: start, End: end},
	}
}

func TestActiveInMonthOpenEnded(t *testing.T) {
	// start = 2024-01 (month-only), end = indefinite
	r := recurring(
		BoundAt(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true),
		IndefiniteBound(),
	)

	cases := []struct {
		target time.Time
		want   bool
	}{
		{month(2024, 1), true},
		{month(2024, 6), true},
		{month(2030, 1), true},
		{month(2023, 12), false},
	}
	for _, tc := range cases {
		if got := ActiveInMonth(r, tc.target); got != tc.want {
			t.Fatalf("ActiveInMonth(%v) = %v, want %v", tc.target, got, tc.want)
		}
	}
}

func TestActiveInMonthBoundedWindow(t *testing.T) {
	// start = 2024-01, end = 2024-03, both month-only
	r := recurring(
		BoundAt(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), true),
		BoundAt(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), true),
	)

	cases := []struct {
		target time.Time
		want   bool
	}{
		{month(2023, 12), false},
		{month(2024, 1), true},
		{month(2024, 2), true},
		{month(2024, 3), true},
		{month(2024, 4), false},
	}
	for _, tc := range cases {
		if got := ActiveInMonth(r, tc.target); got != tc.want {
			t.Fatalf("ActiveInMonth(%v) = %v, want %v", tc.target, got, tc.want)
		}
	}
}

func TestActiveInMonthDayPreciseBounds(t *testing.T) {
	// Without month-only, the day itself bounds the window: a start on the
	// 20th is still active for that month (start <= month end).
	r := recurring(
		BoundAt(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), false),
		BoundAt(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), false),
	)
	for m, want := range map[int]bool{12: false, 1: true, 2: true, 3: true, 4: false} {
		year := 2024
		if m == 12 {
			year = 2023
		}
		if got := ActiveInMonth(r, month(year, m)); got != want {
			t.Fatalf("month %d: got %v, want %v", m, got, want)
		}
	}
}

func TestActiveInMonthExecutionDateWins(t *testing.T) {
	// A one-time debt logged in January but due in June belongs to June.
	r := Record{
		Kind:        KindDebt,
		Flow:        FlowExpense,
		Amount:      amt("200"),
		Description: "prestito",
		AccountID:   "main",
		Recurrence: Recurrence{
			Start: BoundAt(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), false),
		},
		Execution: BoundAt(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), false),
	}
	if ActiveInMonth(r, month(2024, 1)) {
		t.Fatalf("debt active in log month, want execution month only")
	}
	if !ActiveInMonth(r, month(2024, 6)) {
		t.Fatalf("debt not active in execution month")
	}
}

func TestActiveInMonthExecutionFallback(t *testing.T) {
	// All non-transaction kinds fall back to the start date when no
	// execution date is present.
	for _, kind := range []Kind{KindDebt, KindCredit, KindInvestment, KindCommitment} {
		r := Record{
			Kind:        kind,
			Flow:        FlowFor(kind),
			Amount:      amt("50"),
			Description: "x",
			AccountID:   "main",
			Recurrence: Recurrence{
				Start: BoundAt(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), false),
			},
		}
		if !ActiveInMonth(r, month(2024, 2)) {
			t.Fatalf("%s: not active in start month", kind)
		}
		if ActiveInMonth(r, month(2024, 3)) {
			t.Fatalf("%s: active outside start month", kind)
		}
	}
}

func TestActiveInMonthNoUsableDate(t *testing.T) {
	// A one-time record with no date anywhere appears in no month.
	r := Record{
		Kind:        KindTransaction,
		Flow:        FlowExpense,
		Amount:      amt("10"),
		Description: "x",
		AccountID:   "main",
	}
	for _, m := range []time.Time{month(2023, 1), month(2024, 6), month(2030, 12)} {
		if ActiveInMonth(r, m) {
			t.Fatalf("record with no dates active in %v", m)
		}
	}
}

func TestActiveInMonthTargetDayIrrelevant(t *testing.T) {
	r := recurring(BoundAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true), IndefiniteBound())
	midMonth := time.Date(2024, 6, 17, 22, 10, 3, 0, time.UTC)
	if ActiveInMonth(r, midMonth) != ActiveInMonth(r, month(2024, 6)) {
		t.Fatalf("membership depends on the day of the target month")
	}
}
