package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finanze/internal/core"
	"finanze/internal/ledger"
	"finanze/internal/services"
)

// handleListRecords returns the user's records, optionally filtered to one
// calendar month via year and month query parameters.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)

	records, err := s.store.ListRecords(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List records error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	if r.URL.Query().Has("year") || r.URL.Query().Has("month") {
		target, err := parseTargetMonth(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filtered := records[:0]
		for _, rec := range records {
			if core.ActiveInMonth(rec, target) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": buildRecordList(records)})
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)

	var payload recordPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := payload.toRecord()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.Append(r.Context(), userID, rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Record append error", "error", err, "user_id", userID, "description", rec.Description)
		writeError(w, http.StatusInternalServerError, "failed to save record")
		return
	}
	rec.ID = id

	s.httpLog.LogRecordCreated(r.Context(), rec.ID, string(rec.Kind), rec.Amount.String(), rec.Category)
	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusCreated, buildRecordResponse(rec))
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record id")
		return
	}

	var payload recordPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := payload.toRecord()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	rec.ID = id

	if err := s.store.Update(r.Context(), userID, rec); err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		slog.ErrorContext(r.Context(), "Record update error", "error", err, "user_id", userID, "record_id", id)
		writeError(w, http.StatusInternalServerError, "failed to update record")
		return
	}

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusOK, buildRecordResponse(rec))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record id")
		return
	}

	if err := s.store.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		slog.ErrorContext(r.Context(), "Record delete error", "error", err, "user_id", userID, "record_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

type settlePayload struct {
	Date        string `json:"date,omitempty"`
	IsMonthOnly bool   `json:"isMonthOnly,omitempty"`
}

// handleSettleRecord creates the mirroring plain transaction for a debt or
// credit: the original record stays, the settlement moves the account.
func (s *Server) handleSettleRecord(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record id")
		return
	}

	var payload settlePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settleDate := time.Now().UTC().Truncate(24 * time.Hour)
	if strings.TrimSpace(payload.Date) != "" {
		t, err := time.Parse(dateLayout, strings.TrimSpace(payload.Date))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid settlement date")
			return
		}
		settleDate = t
	}

	records, err := s.store.ListRecords(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List records error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to load record")
		return
	}
	var settled *core.Record
	for i := range records {
		if records[i].ID == id {
			settled = &records[i]
			break
		}
	}
	if settled == nil {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	mirror, err := services.SettlementRecord(*settled, settleDate, payload.IsMonthOnly)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	mirrorID, err := s.store.Append(r.Context(), userID, mirror)
	if err != nil {
		slog.ErrorContext(r.Context(), "Settlement append error", "error", err, "user_id", userID, "record_id", id)
		writeError(w, http.StatusInternalServerError, "failed to save settlement")
		return
	}
	mirror.ID = mirrorID

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusCreated, buildRecordResponse(mirror))
}

type transferPayload struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Category      string `json:"category,omitempty"`
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
	Date          string `json:"date,omitempty"`
}

// handleCreateTransfer creates the mirrored expense/income pair that moves
// money between two of the user's accounts.
func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)

	var payload transferPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := core.ParseAmount(payload.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	if payload.FromAccountID == payload.ToAccountID {
		writeError(w, http.StatusUnprocessableEntity, "source and destination accounts must differ")
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if strings.TrimSpace(payload.Date) != "" {
		t, err := time.Parse(dateLayout, strings.TrimSpace(payload.Date))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid transfer date")
			return
		}
		date = t
	}

	category := sanitizeInput(payload.Category)
	if category == "" {
		category = "savings"
	}

	expense, income := services.TransferRecords(
		sanitizeInput(payload.Description), amount, category,
		strings.TrimSpace(payload.FromAccountID), strings.TrimSpace(payload.ToAccountID), date)

	expenseID, err := s.store.Append(r.Context(), userID, expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transfer expense append error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to save transfer")
		return
	}
	expense.ID = expenseID

	incomeID, err := s.store.Append(r.Context(), userID, income)
	if err != nil {
		// The pair is already half-written; surface the failure, the client
		// can delete the orphan leg.
		slog.ErrorContext(r.Context(), "Transfer income append error", "error", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusInternalServerError, "failed to save transfer destination leg")
		return
	}
	income.ID = incomeID

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"from": buildRecordResponse(expense),
		"to":   buildRecordResponse(income),
	})
}
