package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"finanze/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func boundResponse(b core.Bound) *boundPayload {
	if b.Indefinite() {
		return &boundPayload{IsIndefinite: true}
	}
	return &boundPayload{
		Date:        b.Date().Format(dateLayout),
		IsMonthOnly: b.MonthOnly(),
	}
}

type recordResponse struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"`
	Flow        string        `json:"flow"`
	Amount      string        `json:"amount"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	AccountID   string        `json:"accountId"`
	IsRecurring bool          `json:"isRecurring"`
	Start       *boundPayload `json:"start"`
	End         *boundPayload `json:"end"`
	Execution   *boundPayload `json:"execution"`
	Probability int           `json:"probability,omitempty"`
	CreatedAt   string        `json:"createdAt,omitempty"`
}

func buildRecordResponse(r core.Record) recordResponse {
	resp := recordResponse{
		ID:          r.ID,
		Kind:        string(r.Kind),
		Flow:        string(r.Flow),
		Amount:      r.Amount.String(),
		Description: r.Description,
		Category:    r.Category,
		AccountID:   r.AccountID,
		IsRecurring: r.Recurrence.Recurring,
		Start:       boundResponse(r.Recurrence.Start),
		End:         boundResponse(r.Recurrence.End),
		Execution:   boundResponse(r.Execution),
		Probability: int(r.Probability),
	}
	if !r.CreatedAt.IsZero() {
		resp.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func buildRecordList(records []core.Record) []recordResponse {
	out := make([]recordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, buildRecordResponse(r))
	}
	return out
}

type accountResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

type summaryResponse struct {
	Year             int    `json:"year"`
	Month            int    `json:"month"`
	Income           string `json:"income"`
	Expense          string `json:"expense"`
	RecurringIncome  string `json:"recurringIncome"`
	RecurringExpense string `json:"recurringExpense"`
	Debts            string `json:"debts"`
	Credits          string `json:"credits"`
	Investments      string `json:"investments"`
	Commitments      string `json:"commitments"`
	TransactionCount int    `json:"transactionCount"`
	Skipped          int    `json:"skipped,omitempty"`
}

func buildSummaryResponse(target time.Time, t core.PeriodTotals) summaryResponse {
	return summaryResponse{
		Year:             target.Year(),
		Month:            int(target.Month()),
		Income:           t.Income.String(),
		Expense:          t.Expense.String(),
		RecurringIncome:  t.RecurringIncome.String(),
		RecurringExpense: t.RecurringExpense.String(),
		Debts:            t.Debts.String(),
		Credits:          t.Credits.String(),
		Investments:      t.Investments.String(),
		Commitments:      t.Commitments.String(),
		TransactionCount: t.TransactionCount,
		Skipped:          t.Skipped,
	}
}

type balanceSheetResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	Assets      string `json:"assets"`
	Liabilities string `json:"liabilities"`
	NetWorth    string `json:"netWorth"`

	LiquidAssets     string `json:"liquidAssets"`
	TotalCredits     string `json:"totalCredits"`
	TotalDebts       string `json:"totalDebts"`
	TotalCommitments string `json:"totalCommitments"`
	NetWorthTotal    string `json:"netWorthTotal"`
}

func buildBalanceSheetResponse(target time.Time, bs core.BalanceSheet) balanceSheetResponse {
	return balanceSheetResponse{
		Year:             target.Year(),
		Month:            int(target.Month()),
		Assets:           bs.Assets.String(),
		Liabilities:      bs.Liabilities.String(),
		NetWorth:         bs.NetWorth.String(),
		LiquidAssets:     bs.LiquidAssets.String(),
		TotalCredits:     bs.TotalCredits.String(),
		TotalDebts:       bs.TotalDebts.String(),
		TotalCommitments: bs.TotalCommitments.String(),
		NetWorthTotal:    bs.NetWorthTotal.String(),
	}
}

type piggyBankResponse struct {
	AccountID        string `json:"accountId"`
	Name             string `json:"name"`
	Income           string `json:"income"`
	Expense          string `json:"expense"`
	Balance          string `json:"balance"`
	TransactionCount int    `json:"transactionCount"`
}

func buildPiggyBankList(balances []core.AccountBalance, total core.Money) map[string]any {
	out := make([]piggyBankResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, piggyBankResponse{
			AccountID:        b.AccountID,
			Name:             b.Name,
			Income:           b.Income.String(),
			Expense:          b.Expense.String(),
			Balance:          b.Balance.String(),
			TransactionCount: b.TransactionCount,
		})
	}
	return map[string]any{
		"accounts": out,
		"total":    total.String(),
	}
}
