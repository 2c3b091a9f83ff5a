// Package ledger defines the outbound ports of the application: the record
// and account stores, scoped by user, and the export sink the worker feeds.
package ledger

import (
	"context"
	"errors"

	"finanze/internal/core"
)

// Sentinel errors shared by every store implementation, so callers can map
// them without knowing which backend is behind the port.
var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrAccountNotFound = errors.New("account not found")
)

// Ports for outbound adapters.
type (
	RecordWriter interface {
		// Append persists a new record for the user and returns its id.
		Append(ctx context.Context, userID string, r core.Record) (id string, err error)
	}

	RecordUpdater interface {
		// Update replaces the stored record with the same id.
		Update(ctx context.Context, userID string, r core.Record) error
	}

	RecordDeleter interface {
		Delete(ctx context.Context, userID, id string) error
	}

	// RecordLister returns the user's full record history. Callers hand the
	// snapshot to the core for filtering and aggregation.
	RecordLister interface {
		ListRecords(ctx context.Context, userID string) ([]core.Record, error)
	}

	AccountWriter interface {
		// CreateAccount persists a new account and returns its id.
		CreateAccount(ctx context.Context, userID string, a core.Account) (id string, err error)
	}

	AccountLister interface {
		ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	}

	// AccountDeleter removes an account. Records referencing it are
	// orphaned, never cascade-deleted.
	AccountDeleter interface {
		DeleteAccount(ctx context.Context, userID, id string) error
	}

	// ExportWriter appends a record to an external ledger (Google Sheets).
	ExportWriter interface {
		ExportRecord(ctx context.Context, userID string, r core.Record) (rowRef string, err error)
	}
)
