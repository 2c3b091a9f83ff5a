package core

import (
	"math/rand"
	"testing"
	"time"
)

func oneTime(kind Kind, flow Flow, amount string, when time.Time) Record {
	return Record{
		Kind:        kind,
		Flow:        flow,
		Amount:      amt(amount),
		Description: "x",
		AccountID:   "main",
		Recurrence:  Recurrence{Start: BoundAt(when, false)},
	}
}

func sampleRecords() []Record {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return []Record{
		oneTime(KindTransaction, FlowIncome, "2500", jan),
		oneTime(KindTransaction, FlowExpense, "150", jan),
		recurring(BoundAt(month(2024, 1), true), IndefiniteBound()), // expense 100/month
		{
			Kind: KindTransaction, Flow: FlowIncome, Amount: amt("1200"),
			Description: "stipendio", AccountID: "main",
			Recurrence: Recurrence{Recurring: true, Start: BoundAt(month(2024, 1), true)},
		},
		oneTime(KindDebt, FlowExpense, "200", jan),
		{
			Kind: KindCredit, Flow: FlowIncome, Amount: amt("1000"),
			Description: "rimborso", AccountID: "main", Probability: 30,
			Recurrence: Recurrence{Start: BoundAt(jan, false)},
		},
		oneTime(KindInvestment, FlowExpense, "300", jan),
		oneTime(KindCommitment, FlowExpense, "500", jan),
	}
}

func TestAggregatePartitions(t *testing.T) {
	totals, err := Aggregate(sampleRecords(), month(2024, 1), DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  Money
		want string
	}{
		{"income", totals.Income, "2500"},
		{"expense", totals.Expense, "150"},
		{"recurring income", totals.RecurringIncome, "1200"},
		{"recurring expense", totals.RecurringExpense, "100"},
		{"debts", totals.Debts, "200"},
		{"credits", totals.Credits, "1000"},
		{"investments", totals.Investments, "300"},
		{"commitments", totals.Commitments, "500"},
	}
	for _, c := range checks {
		if !c.got.Equal(amt(c.want)) {
			t.Fatalf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
	if totals.TransactionCount != 8 {
		t.Fatalf("TransactionCount = %d, want 8", totals.TransactionCount)
	}
}

func TestAggregateZeroTargetMonth(t *testing.T) {
	if _, err := Aggregate(sampleRecords(), time.Time{}, DefaultPolicy()); err == nil {
		t.Fatalf("expected error for zero target month")
	}
}

func TestAggregateProbabilityWeighting(t *testing.T) {
	records := sampleRecords()

	weighted, err := Aggregate(records, month(2024, 1), Policy{UseProbabilistic: true, IncludeCommitments: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !weighted.Credits.Equal(amt("300")) {
		t.Fatalf("weighted credits = %s, want 300", weighted.Credits)
	}

	flat, _ := Aggregate(records, month(2024, 1), DefaultPolicy())
	if !flat.Credits.Equal(amt("1000")) {
		t.Fatalf("unweighted credits = %s, want 1000", flat.Credits)
	}
}

func TestAggregateCommitmentToggle(t *testing.T) {
	totals, err := Aggregate(sampleRecords(), month(2024, 1), Policy{IncludeCommitments: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.Commitments.IsZero() {
		t.Fatalf("commitments = %s, want 0 when excluded", totals.Commitments)
	}
}

func TestAggregateSkipsMalformed(t *testing.T) {
	records := append(sampleRecords(), Record{
		Kind: "loan", Flow: FlowExpense, Amount: amt("999"),
		Description: "?", AccountID: "main",
		Recurrence: Recurrence{Start: BoundAt(month(2024, 1), true)},
	})
	totals, err := Aggregate(records, month(2024, 1), DefaultPolicy())
	if err != nil {
		t.Fatalf("malformed record must not fail aggregation: %v", err)
	}
	if totals.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", totals.Skipped)
	}
	if totals.TransactionCount != 8 {
		t.Fatalf("TransactionCount = %d, want 8", totals.TransactionCount)
	}
}

func TestAggregateReportsEachSkip(t *testing.T) {
	records := append(sampleRecords(),
		Record{
			ID: "bad-kind", Kind: "loan", Flow: FlowExpense, Amount: amt("999"),
			Description: "?", AccountID: "main",
			Recurrence: Recurrence{Start: BoundAt(month(2024, 1), true)},
		},
		Record{
			ID: "bad-flow", Kind: KindTransaction, Flow: "sideways", Amount: amt("5"),
			Description: "?", AccountID: "main",
			Recurrence: Recurrence{Start: BoundAt(month(2024, 1), true)},
		},
	)

	var skipped []string
	totals, err := AggregateWithDiagnostics(records, month(2024, 1), DefaultPolicy(), func(r Record) {
		skipped = append(skipped, r.ID)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.Skipped != len(skipped) {
		t.Fatalf("Skipped = %d but callback saw %d records", totals.Skipped, len(skipped))
	}
	want := map[string]bool{"bad-kind": true, "bad-flow": true}
	for _, id := range skipped {
		if !want[id] {
			t.Fatalf("callback saw unexpected record %q", id)
		}
		delete(want, id)
	}
	if len(want) != 0 {
		t.Fatalf("callback missed records: %v", want)
	}
}

func TestAggregateZeroAmountCounts(t *testing.T) {
	records := []Record{oneTime(KindTransaction, FlowExpense, "0", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))}
	totals, err := Aggregate(records, month(2024, 1), DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.TransactionCount != 1 {
		t.Fatalf("zero-amount record not counted")
	}
	if !totals.Expense.IsZero() {
		t.Fatalf("expense = %s, want 0", totals.Expense)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	records := sampleRecords()
	base, err := Aggregate(records, month(2024, 1), DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got, err := Aggregate(shuffled, month(2024, 1), DefaultPolicy())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Income.Equal(base.Income) || !got.Expense.Equal(base.Expense) ||
			!got.RecurringIncome.Equal(base.RecurringIncome) ||
			!got.RecurringExpense.Equal(base.RecurringExpense) ||
			!got.Debts.Equal(base.Debts) || !got.Credits.Equal(base.Credits) ||
			!got.Investments.Equal(base.Investments) || !got.Commitments.Equal(base.Commitments) ||
			got.TransactionCount != base.TransactionCount {
			t.Fatalf("permutation %d changed totals", i)
		}
	}
}

func TestAggregateIdempotent(t *testing.T) {
	records := sampleRecords()
	first, _ := Aggregate(records, month(2024, 1), DefaultPolicy())
	second, _ := Aggregate(records, month(2024, 1), DefaultPolicy())
	if !first.Income.Equal(second.Income) || first.TransactionCount != second.TransactionCount ||
		!first.Credits.Equal(second.Credits) {
		t.Fatalf("repeated aggregation diverged")
	}
}
