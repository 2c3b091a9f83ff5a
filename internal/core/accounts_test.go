package core

import (
	"testing"
	"time"
)

func TestBalanceForAccount(t *testing.T) {
	day := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	vacanze := Account{ID: "pb1", Name: "Salvadanaio Vacanze", Type: AccountPiggyBank}

	deposit := oneTime(KindTransaction, FlowIncome, "500", day)
	deposit.AccountID = "pb1"
	withdrawal := oneTime(KindTransaction, FlowExpense, "120", day)
	withdrawal.AccountID = "pb1"
	elsewhere := oneTime(KindTransaction, FlowIncome, "999", day) // account "main"
	// Debts never move an account balance until settled.
	debt := oneTime(KindDebt, FlowExpense, "300", day)
	debt.AccountID = "pb1"

	b := BalanceForAccount([]Record{deposit, withdrawal, elsewhere, debt}, vacanze)
	if !b.Income.Equal(amt("500")) || !b.Expense.Equal(amt("120")) {
		t.Fatalf("income/expense = %s/%s", b.Income, b.Expense)
	}
	if !b.Balance.Equal(amt("380")) {
		t.Fatalf("balance = %s, want 380", b.Balance)
	}
	if b.TransactionCount != 2 {
		t.Fatalf("count = %d, want 2", b.TransactionCount)
	}
}

func TestPiggyBankBalances(t *testing.T) {
	day := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	accounts := []Account{
		{ID: "main", Name: "Conto principale", Type: AccountMain},
		{ID: "pb1", Name: "Vacanze", Type: AccountPiggyBank},
		{ID: "pb2", Name: "Emergenze", Type: AccountPiggyBank},
	}

	var records []Record
	add := func(accountID, amount string, flow Flow) {
		r := oneTime(KindTransaction, flow, amount, day)
		r.AccountID = accountID
		records = append(records, r)
	}
	add("pb1", "500", FlowIncome)
	add("pb2", "350", FlowIncome)
	add("main", "2500", FlowIncome)

	balances, total := PiggyBankBalances(records, accounts)
	if len(balances) != 2 {
		t.Fatalf("balances = %d, want 2 (main excluded)", len(balances))
	}
	if !total.Equal(amt("850")) {
		t.Fatalf("total = %s, want 850", total)
	}
}
