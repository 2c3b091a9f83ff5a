package core

// AccountBalance is the whole-history position of a single account, computed
// over plain transactions only: debts, credits, investments and commitments
// never move an account balance until they are settled.
type AccountBalance struct {
	AccountID        string
	Name             string
	Income           Money
	Expense          Money
	Balance          Money
	TransactionCount int
}

// BalanceForAccount reduces the plain transactions of one account.
func BalanceForAccount(records []Record, account Account) AccountBalance {
	b := AccountBalance{
		AccountID: account.ID,
		Name:      account.Name,
		Income:    MoneyZero(),
		Expense:   MoneyZero(),
	}
	for _, r := range records {
		if r.AccountID != account.ID || r.Kind != KindTransaction {
			continue
		}
		switch r.Flow {
		case FlowIncome:
			b.Income = b.Income.Add(r.Amount)
		case FlowExpense:
			b.Expense = b.Expense.Add(r.Amount)
		default:
			continue
		}
		b.TransactionCount++
	}
	b.Balance = b.Income.Sub(b.Expense)
	return b
}

// PiggyBankBalances returns one balance per piggy-bank account, in the
// order the accounts are given, plus the grand total across all of them.
func PiggyBankBalances(records []Record, accounts []Account) ([]AccountBalance, Money) {
	var balances []AccountBalance
	total := MoneyZero()
	for _, a := range accounts {
		if a.Type != AccountPiggyBank {
			continue
		}
		b := BalanceForAccount(records, a)
		balances = append(balances, b)
		total = total.Add(b.Balance)
	}
	return balances, total
}
