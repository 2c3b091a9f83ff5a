package core

import (
	"testing"
	"time"
)

func TestBalanceSheetMonthView(t *testing.T) {
	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	sheet, err := BalanceSheetFor(sampleRecords(), month(2024, 1), DefaultPolicy(), now, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// assets = credits + income + recurring income
	if !sheet.Assets.Equal(amt("4700")) {
		t.Fatalf("assets = %s, want 4700", sheet.Assets)
	}
	// liabilities = debts + expense + recurring expense + commitments
	if !sheet.Liabilities.Equal(amt("950")) {
		t.Fatalf("liabilities = %s, want 950", sheet.Liabilities)
	}
	if !sheet.NetWorth.Equal(sheet.Assets.Sub(sheet.Liabilities)) {
		t.Fatalf("net worth identity broken: %s != %s - %s",
			sheet.NetWorth, sheet.Assets, sheet.Liabilities)
	}
}

func TestBalanceSheetNetWorthIdentityExact(t *testing.T) {
	// Representative decimal inputs must not drift.
	records := []Record{
		oneTime(KindTransaction, FlowIncome, "19.99", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		oneTime(KindTransaction, FlowExpense, "7.33", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)),
		{
			Kind: KindCredit, Flow: FlowIncome, Amount: amt("19.99"),
			Description: "c", AccountID: "main", Probability: 30,
			Recurrence: Recurrence{Start: BoundAt(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), false)},
		},
	}
	policy := Policy{UseProbabilistic: true, IncludeCommitments: true}
	sheet, err := BalanceSheetFor(records, month(2024, 3), policy, month(2024, 3), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 19.99 * 0.3 = 5.997 exactly, plus 19.99 income
	if !sheet.Assets.Equal(amt("25.987")) {
		t.Fatalf("assets = %s, want 25.987", sheet.Assets)
	}
	if !sheet.NetWorth.Equal(amt("18.657")) {
		t.Fatalf("net worth = %s, want 18.657", sheet.NetWorth)
	}
}

func TestLifetimeTotals(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	records := []Record{
		oneTime(KindTransaction, FlowIncome, "3000", time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)),
		oneTime(KindTransaction, FlowExpense, "1000", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		// recurring debt, 100/month through Oct 2024: 4 remaining installments
		{
			Kind: KindDebt, Flow: FlowExpense, Amount: amt("100"),
			Description: "rata", AccountID: "main",
			Recurrence: Recurrence{Recurring: true, Start: BoundAt(month(2024, 1), true), End: BoundAt(month(2024, 10), true)},
		},
		// one-time debt counts once
		oneTime(KindDebt, FlowExpense, "250", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		{
			Kind: KindCredit, Flow: FlowIncome, Amount: amt("1000"),
			Description: "c", AccountID: "main", Probability: 50,
			Recurrence: Recurrence{Start: BoundAt(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), false)},
		},
		oneTime(KindCommitment, FlowExpense, "500", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	lt := Lifetime(records, Policy{UseProbabilistic: true, IncludeCommitments: true}, now)
	if !lt.Income.Equal(amt("3000")) || !lt.Expense.Equal(amt("1000")) {
		t.Fatalf("liquid components = %s / %s", lt.Income, lt.Expense)
	}
	if !lt.Debts.Equal(amt("650")) { // 100*4 + 250
		t.Fatalf("debts = %s, want 650", lt.Debts)
	}
	if !lt.Credits.Equal(amt("500")) {
		t.Fatalf("credits = %s, want 500", lt.Credits)
	}
	if !lt.Commitments.Equal(amt("500")) {
		t.Fatalf("commitments = %s, want 500", lt.Commitments)
	}

	sheet := BuildBalanceSheet(PeriodTotals{
		Income: MoneyZero(), Expense: MoneyZero(),
		RecurringIncome: MoneyZero(), RecurringExpense: MoneyZero(),
		Debts: MoneyZero(), Credits: MoneyZero(),
		Investments: MoneyZero(), Commitments: MoneyZero(),
	}, lt, DefaultPolicy())
	if !sheet.LiquidAssets.Equal(amt("2000")) {
		t.Fatalf("liquid assets = %s, want 2000", sheet.LiquidAssets)
	}
	// 2000 + 500 - 650 - 500
	if !sheet.NetWorthTotal.Equal(amt("1350")) {
		t.Fatalf("net worth total = %s, want 1350", sheet.NetWorthTotal)
	}
}

func TestLifetimeCommitmentToggle(t *testing.T) {
	records := []Record{
		oneTime(KindCommitment, FlowExpense, "500", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	now := month(2024, 6)

	with := Lifetime(records, DefaultPolicy(), now)
	if !with.Commitments.Equal(amt("500")) {
		t.Fatalf("commitments = %s, want 500", with.Commitments)
	}
	without := Lifetime(records, Policy{IncludeCommitments: false}, now)
	if !without.Commitments.IsZero() {
		t.Fatalf("commitments = %s, want 0 when excluded", without.Commitments)
	}
}
