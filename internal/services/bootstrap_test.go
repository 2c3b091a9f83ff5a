package services

import (
	"context"
	"testing"

	"finanze/internal/core"
	"finanze/internal/ledger/memory"
)

func TestEnsureDefaultAccounts(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if err := EnsureDefaultAccounts(ctx, store, "user1"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	accounts, _ := store.ListAccounts(ctx, "user1")
	if len(accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(accounts))
	}
	types := map[core.AccountType]bool{}
	for _, a := range accounts {
		types[a.Type] = true
	}
	if !types[core.AccountMain] || !types[core.AccountCard] {
		t.Fatalf("missing default types: %+v", accounts)
	}

	// Idempotent: a second run creates nothing.
	if err := EnsureDefaultAccounts(ctx, store, "user1"); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	accounts, _ = store.ListAccounts(ctx, "user1")
	if len(accounts) != 2 {
		t.Fatalf("bootstrap not idempotent: %d accounts", len(accounts))
	}
}

func TestEnsureDefaultAccountsPartial(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if _, err := store.CreateAccount(ctx, "user1", core.Account{Name: "Conto principale", Type: core.AccountMain}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := EnsureDefaultAccounts(ctx, store, "user1"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	accounts, _ := store.ListAccounts(ctx, "user1")
	if len(accounts) != 2 {
		t.Fatalf("accounts = %d, want only the card added", len(accounts))
	}
}
