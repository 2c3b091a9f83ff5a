package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"finanze/internal/core"
	"finanze/internal/ledger"
)

// handleListAccounts returns the user's accounts with their whole-history
// balances computed over plain transactions.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)

	accounts, err := s.store.ListAccounts(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List accounts error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}

	records, err := s.store.ListRecords(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List records error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		balance := core.BalanceForAccount(records, a)
		out = append(out, accountResponse{
			ID:      a.ID,
			Name:    a.Name,
			Type:    string(a.Type),
			Balance: balance.Balance.String(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"accounts": out})
}

type accountPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)

	var payload accountPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account := core.Account{
		Name: sanitizeInput(payload.Name),
		Type: core.AccountType(strings.TrimSpace(payload.Type)),
	}
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.CreateAccount(r.Context(), userID, account)
	if err != nil {
		slog.ErrorContext(r.Context(), "Account create error", "error", err, "user_id", userID, "name", account.Name)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	account.ID = id

	writeJSON(w, http.StatusCreated, accountResponse{
		ID:      account.ID,
		Name:    account.Name,
		Type:    string(account.Type),
		Balance: core.MoneyZero().String(),
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account id")
		return
	}

	if err := s.store.DeleteAccount(r.Context(), userID, id); err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		slog.ErrorContext(r.Context(), "Account delete error", "error", err, "user_id", userID, "account_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
