package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"finanze/internal/core"
)

// logSkipped reports each malformed record an aggregation dropped, so bad
// rows are visible without failing the request.
func (s *Server) logSkipped(ctx context.Context, userID string) core.SkipFunc {
	return func(rec core.Record) {
		slog.WarnContext(ctx, "Skipped malformed record",
			"user_id", userID, "record_id", rec.ID, "kind", string(rec.Kind), "flow", string(rec.Flow))
	}
}

// handleDashboardSummary returns the month's totals partitioned by kind and
// flow direction, computed under the requested policy.
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)

	target, err := parseTargetMonth(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	policy := parsePolicy(r.URL.Query())

	key := s.dashboardCacheKey(userID, target, policyCacheKey(policy))
	if totals, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "user_id", userID, "target", target.Format("2006-01"))
		writeJSON(w, http.StatusOK, buildSummaryResponse(target, totals))
		return
	}

	records, err := s.store.ListRecords(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List records error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	totals, err := core.AggregateWithDiagnostics(records, target, policy, s.logSkipped(r.Context(), userID))
	if err != nil {
		slog.ErrorContext(r.Context(), "Aggregate error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	s.summaryCache.Set(key, totals)
	writeJSON(w, http.StatusOK, buildSummaryResponse(target, totals))
}

// handleBalanceSheet returns the dual-view balance sheet: the selected
// month's forecast plus whole-history net worth.
func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)

	target, err := parseTargetMonth(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	policy := parsePolicy(r.URL.Query())

	key := s.dashboardCacheKey(userID, target, policyCacheKey(policy))
	if sheet, found := s.balanceCache.Get(key); found {
		slog.DebugContext(r.Context(), "Balance sheet cache hit", "user_id", userID, "target", target.Format("2006-01"))
		writeJSON(w, http.StatusOK, buildBalanceSheetResponse(target, sheet))
		return
	}

	records, err := s.store.ListRecords(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List records error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute balance sheet")
		return
	}

	sheet, err := core.BalanceSheetFor(records, target, policy, time.Now().UTC(), s.logSkipped(r.Context(), userID))
	if err != nil {
		slog.ErrorContext(r.Context(), "Balance sheet error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute balance sheet")
		return
	}

	s.balanceCache.Set(key, sheet)
	writeJSON(w, http.StatusOK, buildBalanceSheetResponse(target, sheet))
}

// handlePiggyBanks returns per-piggy-bank balances and their grand total.
func (s *Server) handlePiggyBanks(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)

	accounts, err := s.store.ListAccounts(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List accounts error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute piggy bank balances")
		return
	}

	records, err := s.store.ListRecords(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List records error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute piggy bank balances")
		return
	}

	balances, total := core.PiggyBankBalances(records, accounts)
	writeJSON(w, http.StatusOK, buildPiggyBankList(balances, total))
}

// Expense categories mirror the ones the record form offers; investments get
// their own pair.
var defaultCategories = map[string][]string{
	"expense":    {"utilities", "savings", "gifts", "travel", "dining", "entertainment"},
	"investment": {"financial", "capital"},
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": defaultCategories})
}
