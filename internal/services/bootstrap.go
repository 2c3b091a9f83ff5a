package services

import (
	"context"
	"fmt"
	"log/slog"

	"finanze/internal/core"
	"finanze/internal/ledger"
)

var defaultAccounts = []core.Account{
	{Name: "Conto principale", Type: core.AccountMain},
	{Name: "Carta di credito", Type: core.AccountCard},
}

// AccountStore is the slice of the ledger ports the bootstrap needs.
type AccountStore interface {
	ledger.AccountLister
	ledger.AccountWriter
}

// EnsureDefaultAccounts creates the main and card accounts for a user when
// missing. The core never assumes they exist; this is the one explicit
// initialization step, run at first contact with a user.
func EnsureDefaultAccounts(ctx context.Context, store AccountStore, userID string) error {
	existing, err := store.ListAccounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	present := make(map[core.AccountType]bool, len(existing))
	for _, a := range existing {
		present[a.Type] = true
	}

	for _, a := range defaultAccounts {
		if present[a.Type] {
			continue
		}
		id, err := store.CreateAccount(ctx, userID, a)
		if err != nil {
			return fmt.Errorf("create default %s account: %w", a.Type, err)
		}
		slog.InfoContext(ctx, "Created default account",
			"user_id", userID, "type", a.Type, "id", id)
	}

	return nil
}
