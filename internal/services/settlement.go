package services

import (
	"fmt"
	"time"

	"finanze/internal/core"
)

// SettlementRecord builds the plain transaction that settles a one-time debt
// or credit: paying off a debt books an expense, collecting a credit books an
// income. The settled record itself is left untouched.
func SettlementRecord(settled core.Record, settleDate time.Time, monthOnly bool) (core.Record, error) {
	var (
		flow   core.Flow
		prefix string
	)
	switch settled.Kind {
	case core.KindDebt:
		flow, prefix = core.FlowExpense, "Pagamento: "
	case core.KindCredit:
		flow, prefix = core.FlowIncome, "Incasso: "
	default:
		return core.Record{}, fmt.Errorf("cannot settle a %s record", settled.Kind)
	}
	if settled.Recurrence.Recurring {
		return core.Record{}, fmt.Errorf("cannot settle a recurring record")
	}

	return core.Record{
		Kind:        core.KindTransaction,
		Flow:        flow,
		Amount:      settled.Amount,
		Description: prefix + settled.Description,
		Category:    settled.Category,
		AccountID:   settled.AccountID,
		Recurrence: core.Recurrence{
			Start: core.BoundAt(settleDate, monthOnly),
		},
	}, nil
}

// TransferRecords builds the mirrored pair for a transfer between accounts:
// an expense on the source and an income on the destination, same amount.
func TransferRecords(description string, amount core.Money, category, fromAccount, toAccount string, date time.Time) (expense, income core.Record) {
	expense = core.Record{
		Kind:        core.KindTransaction,
		Flow:        core.FlowExpense,
		Amount:      amount,
		Description: "Trasferimento: " + description,
		Category:    category,
		AccountID:   fromAccount,
		Recurrence: core.Recurrence{
			Start: core.BoundAt(date, false),
		},
	}
	income = expense
	income.Flow = core.FlowIncome
	income.AccountID = toAccount
	return expense, income
}
